package lcd

import (
	"errors"
	"fmt"
)

// ErrWrite is the failure injected by FakeDevice.
var ErrWrite = errors.New("lcd: simulated write failure")

// FakeDevice is a test double that records operations and can script
// failures. Reset always succeeds (and is recorded), matching a controller
// re-initialisation that clears a wedged bus; Clear, MoveCursor, WriteString
// and DefineChar fail while FailNext > 0 or FailAlways is set.
type FakeDevice struct {
	// Ops records every attempted operation in order, e.g. "reset",
	// "clear", "move 0,2", "write PoolMon".
	Ops []string

	// FailNext fails that many upcoming fallible operations.
	FailNext int

	// FailAlways fails every fallible operation.
	FailAlways bool

	// Resets counts Reset calls.
	Resets int

	// Backlight is the last commanded backlight state.
	Backlight bool

	// Glyphs holds the defined custom characters by CGRAM slot.
	Glyphs map[uint8][8]byte

	// Rows mirrors the visible content written since the last Clear or
	// Reset, keyed by row.
	Rows [Rows]string

	cursorCol int
	cursorRow int
}

// NewFakeDevice creates an empty FakeDevice.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{Glyphs: make(map[uint8][8]byte)}
}

func (f *FakeDevice) fail() bool {
	if f.FailAlways {
		return true
	}
	if f.FailNext > 0 {
		f.FailNext--
		return true
	}
	return false
}

// Reset records a controller re-initialisation and clears the mirror.
func (f *FakeDevice) Reset() error {
	f.Ops = append(f.Ops, "reset")
	f.Resets++
	f.Rows = [Rows]string{}
	f.cursorCol, f.cursorRow = 0, 0
	return nil
}

// Clear blanks the mirror.
func (f *FakeDevice) Clear() error {
	f.Ops = append(f.Ops, "clear")
	if f.fail() {
		return ErrWrite
	}
	f.Rows = [Rows]string{}
	f.cursorCol, f.cursorRow = 0, 0
	return nil
}

// MoveCursor positions the mirror cursor.
func (f *FakeDevice) MoveCursor(col, row int) error {
	f.Ops = append(f.Ops, fmt.Sprintf("move %d,%d", col, row))
	if f.fail() {
		return ErrWrite
	}
	f.cursorCol, f.cursorRow = col, row
	return nil
}

// WriteString writes into the mirror at the cursor.
func (f *FakeDevice) WriteString(s string) error {
	f.Ops = append(f.Ops, "write "+s)
	if f.fail() {
		return ErrWrite
	}
	if f.cursorRow < 0 || f.cursorRow >= Rows {
		return fmt.Errorf("lcd: cursor row %d out of range", f.cursorRow)
	}
	row := f.Rows[f.cursorRow]
	for len(row) < f.cursorCol {
		row += " "
	}
	row = row[:f.cursorCol] + s
	f.Rows[f.cursorRow] = row
	f.cursorCol += len(s)
	return nil
}

// SetBacklight records the backlight state. Never fails; the backlight bit
// rides on every backpack write and has no controller state to corrupt.
func (f *FakeDevice) SetBacklight(on bool) error {
	f.Ops = append(f.Ops, fmt.Sprintf("backlight %v", on))
	f.Backlight = on
	return nil
}

// DefineChar records a custom glyph.
func (f *FakeDevice) DefineChar(index uint8, glyph [8]byte) error {
	f.Ops = append(f.Ops, fmt.Sprintf("define %d", index))
	if f.fail() {
		return ErrWrite
	}
	f.Glyphs[index] = glyph
	return nil
}

// CountOps returns how many recorded operations have the given prefix.
func (f *FakeDevice) CountOps(prefix string) int {
	n := 0
	for _, op := range f.Ops {
		if len(op) >= len(prefix) && op[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
