package lcd

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// HD44780 instruction set (subset used here).
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOn   = 0x0c // display on, cursor off, blink off
	cmdDisplayOff  = 0x08
	cmdFunctionSet = 0x28 // 4-bit, 2-line addressing, 5x8 font
	cmdSetCGRAM    = 0x40
	cmdSetDDRAM    = 0x80
)

// PCF8574 backpack pin assignments.
const (
	pinRS        = 0x01
	pinEnable    = 0x04
	pinBacklight = 0x08
)

// DDRAM address of column 0 for each row on a 20x4 module.
var rowOffsets = [Rows]byte{0x00, 0x40, 0x14, 0x54}

// DefaultAddr is the usual PCF8574 backpack address.
const DefaultAddr = 0x27

// RealDevice drives an HD44780-compatible 20x4 module through a PCF8574 I2C
// backpack in 4-bit mode. It is not safe for concurrent use; the display
// engine serialises access behind the bus lock.
type RealDevice struct {
	dev       *i2c.Dev
	bus       i2c.BusCloser
	backlight bool
}

// NewRealDevice opens the I2C bus (empty name selects the first available)
// and initialises the controller. Initialisation failure is fatal to the
// caller by contract: a monitor without a display is misconfigured hardware.
func NewRealDevice(busName string, addr uint16) (*RealDevice, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	d := &RealDevice{
		dev:       &i2c.Dev{Bus: bus, Addr: addr},
		bus:       bus,
		backlight: true,
	}
	if err := d.Reset(); err != nil {
		bus.Close()
		return nil, fmt.Errorf("init lcd: %w", err)
	}
	return d, nil
}

// Reset runs the full power-on initialisation sequence, forcing the
// controller into 4-bit mode regardless of what state a bus glitch left it
// in. Custom glyphs are lost and must be redefined by the caller.
func (d *RealDevice) Reset() error {
	time.Sleep(50 * time.Millisecond)

	// Three 8-bit "function set" probes bring the controller into a known
	// state from any of 8-bit, 4-bit aligned or 4-bit misaligned modes.
	for _, delay := range []time.Duration{5 * time.Millisecond, 150 * time.Microsecond, 150 * time.Microsecond} {
		if err := d.writeNibble(0x03, 0); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	if err := d.writeNibble(0x02, 0); err != nil { // switch to 4-bit
		return err
	}

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOff, cmdClear, cmdEntryMode, cmdDisplayOn} {
		if err := d.writeCommand(cmd); err != nil {
			return err
		}
		if cmd == cmdClear {
			time.Sleep(2 * time.Millisecond)
		}
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (d *RealDevice) Clear() error {
	if err := d.writeCommand(cmdClear); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// MoveCursor positions the write cursor.
func (d *RealDevice) MoveCursor(col, row int) error {
	if col < 0 || col >= Columns || row < 0 || row >= Rows {
		return fmt.Errorf("lcd: cursor %d,%d out of range", col, row)
	}
	return d.writeCommand(cmdSetDDRAM | (rowOffsets[row] + byte(col)))
}

// WriteString writes text at the cursor.
func (d *RealDevice) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.writeData(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetBacklight switches the backpack's backlight transistor. The state also
// rides along on every subsequent write.
func (d *RealDevice) SetBacklight(on bool) error {
	d.backlight = on
	var b byte
	if on {
		b = pinBacklight
	}
	if err := d.dev.Tx([]byte{b}, nil); err != nil {
		return fmt.Errorf("set backlight: %w", err)
	}
	return nil
}

// DefineChar loads a 5x8 glyph into CGRAM slot index (0-7).
func (d *RealDevice) DefineChar(index uint8, glyph [8]byte) error {
	if index > 7 {
		return fmt.Errorf("lcd: glyph index %d out of range", index)
	}
	if err := d.writeCommand(cmdSetCGRAM | (index << 3)); err != nil {
		return err
	}
	for _, row := range glyph {
		if err := d.writeData(row); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the I2C bus, blanking the display first.
func (d *RealDevice) Close() error {
	if err := d.writeCommand(cmdDisplayOff); err != nil {
		d.bus.Close()
		return err
	}
	return d.bus.Close()
}

func (d *RealDevice) writeCommand(b byte) error {
	return d.writeByte(b, 0)
}

func (d *RealDevice) writeData(b byte) error {
	return d.writeByte(b, pinRS)
}

func (d *RealDevice) writeByte(b, flags byte) error {
	if err := d.writeNibble(b>>4, flags); err != nil {
		return err
	}
	return d.writeNibble(b&0x0f, flags)
}

// writeNibble latches one 4-bit transfer by pulsing the enable line.
func (d *RealDevice) writeNibble(nibble, flags byte) error {
	b := nibble<<4 | flags
	if d.backlight {
		b |= pinBacklight
	}
	if err := d.dev.Tx([]byte{b | pinEnable, b}, nil); err != nil {
		return fmt.Errorf("i2c write: %w", err)
	}
	time.Sleep(50 * time.Microsecond)
	return nil
}
