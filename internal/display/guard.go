package display

import (
	"fmt"
	"log"
	"time"

	"github.com/kowhai/poolmon/internal/lcd"
)

const (
	retryAttempts = 10
	retryInterval = 10 * time.Millisecond
)

// Guard wraps every primitive display write in a bounded retry. A transient
// bus error leaves the stateful controller desynchronised, so a blind retry
// would fail the same way; each retry is preceded by a full device
// re-initialisation. After the attempt budget is exhausted the failure is
// returned to the caller — display output is best-effort and a failed write
// must never stop the control loops.
type Guard struct {
	dev      lcd.Device
	attempts int
	interval time.Duration
}

// NewGuard wraps the device with the standard retry budget.
func NewGuard(dev lcd.Device) *Guard {
	return &Guard{dev: dev, attempts: retryAttempts, interval: retryInterval}
}

// Reset re-initialises the controller and reloads the custom glyphs. Not
// retried: it is itself the recovery step.
func (g *Guard) Reset() error {
	if err := g.dev.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for _, c := range []struct {
		index uint8
		glyph [8]byte
	}{
		{lcd.CharDegreesC, lcd.GlyphDegreesC},
		{lcd.CharArrowDown, lcd.GlyphArrowDown},
		{lcd.CharArrowUp, lcd.GlyphArrowUp},
		{lcd.CharDelta, lcd.GlyphDelta},
	} {
		if err := g.dev.DefineChar(c.index, c.glyph); err != nil {
			return fmt.Errorf("define glyph %d: %w", c.index, err)
		}
	}
	return nil
}

func (g *Guard) retry(name string, op func() error) error {
	var err error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		log.Printf("display: retry %s %d: %v", name, attempt, err)
		time.Sleep(g.interval)
		if rerr := g.Reset(); rerr != nil {
			log.Printf("display: reset during %s retry: %v", name, rerr)
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Clear blanks the display, retrying with resets.
func (g *Guard) Clear() error {
	return g.retry("clear", g.dev.Clear)
}

// MoveCursor positions the cursor, retrying with resets.
func (g *Guard) MoveCursor(col, row int) error {
	return g.retry("move cursor", func() error {
		return g.dev.MoveCursor(col, row)
	})
}

// WriteString writes text at the cursor, retrying with resets.
func (g *Guard) WriteString(s string) error {
	return g.retry("write string", func() error {
		return g.dev.WriteString(s)
	})
}

// SetBacklight passes through unretried: the backlight bit carries no
// controller state to desynchronise.
func (g *Guard) SetBacklight(on bool) error {
	return g.dev.SetBacklight(on)
}
