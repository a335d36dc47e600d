// Package lcd abstracts the 20x4 character display. The real implementation
// drives an HD44780-compatible controller through a PCF8574 I2C backpack; the
// fake implementation records operations and scripts failures for tests.
//
// Device methods can fail at any time: a transient I2C error desynchronises
// the stateful controller, after which every subsequent write also fails.
// Callers recover by calling Reset and retrying (see the display package's
// output guard).
package lcd

// Display geometry. The controller addresses 40 columns per row but only 20
// are visible.
const (
	Rows           = 4
	Columns        = 40
	VisibleColumns = 20
)

// Device is a character display.
type Device interface {
	// Reset re-initialises the controller from scratch, recovering from a
	// desynchronised bus. Custom glyphs must be redefined afterwards.
	Reset() error

	// Clear blanks the display and homes the cursor.
	Clear() error

	// MoveCursor positions the write cursor at (col, row), zero-based.
	MoveCursor(col, row int) error

	// WriteString writes text at the cursor, advancing it.
	WriteString(s string) error

	// SetBacklight switches the backlight.
	SetBacklight(on bool) error

	// DefineChar loads a 5x8 glyph into CGRAM slot index (0-7).
	DefineChar(index uint8, glyph [8]byte) error
}

// CGRAM slots used for the custom glyphs.
const (
	CharDegreesC uint8 = iota
	CharArrowDown
	CharArrowUp
	CharDelta
)

// In-row encodings of the custom glyphs. The HD44780 mirrors CGRAM slots 0-7
// at character codes 8-15, which avoids embedding NUL bytes in row strings.
const (
	DegreesC  = "\x08"
	ArrowDown = "\x09"
	ArrowUp   = "\x0a"
	Delta     = "\x0b"
)

// Dot is the ROM activity-marker character (centred dot on the A00 ROM).
const Dot = "\xa5"

// GlyphDegreesC is a degree sign with a C, drawn as one 5x8 cell.
var GlyphDegreesC = [8]byte{0x10, 0x06, 0x09, 0x08, 0x08, 0x09, 0x06, 0x00}

// GlyphArrowDown is a filled downward arrow.
var GlyphArrowDown = [8]byte{
	0b00000,
	0b11111,
	0b11111,
	0b01110,
	0b01110,
	0b00100,
	0b00100,
	0b00000,
}

// GlyphArrowUp is a filled upward arrow.
var GlyphArrowUp = [8]byte{
	0b00000,
	0b00100,
	0b00100,
	0b01110,
	0b01110,
	0b11111,
	0b11111,
	0b00000,
}

// GlyphDelta is an uppercase delta.
var GlyphDelta = [8]byte{
	0b00000,
	0b00001,
	0b00011,
	0b00101,
	0b01001,
	0b10001,
	0b11111,
	0b00000,
}
