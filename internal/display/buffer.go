package display

import (
	"strings"

	"github.com/kowhai/poolmon/internal/lcd"
)

// Buffer is the in-memory frame a page renders into: one string per display
// row. Renderers fill it; the engine pads and writes it. No page ever touches
// the hardware.
type Buffer [lcd.Rows]string

// Pad truncates every row to the visible width and space-fills to exactly
// that width, so the fixed-pitch hardware always receives full-width writes.
func (b *Buffer) Pad() {
	for i, row := range b {
		if len(row) > lcd.VisibleColumns {
			row = row[:lcd.VisibleColumns]
		}
		b[i] = row + strings.Repeat(" ", lcd.VisibleColumns-len(row))
	}
}

// overwriteAt places s into row starting at col, extending the row with
// spaces if needed. Used for fixed-position markers like the blink arrows.
func overwriteAt(row string, col int, s string) string {
	for len(row) < col {
		row += " "
	}
	end := col + len(s)
	if end < len(row) {
		return row[:col] + s + row[end:]
	}
	return row[:col] + s
}
