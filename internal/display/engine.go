package display

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kowhai/poolmon/internal/input"
	"github.com/kowhai/poolmon/internal/lcd"
	"github.com/kowhai/poolmon/internal/store"
)

// UpdatePeriod is the display refresh cadence. The engine blocks on the input
// queue for at most this long per cycle, merging periodic refresh and input
// reaction into one loop.
const UpdatePeriod = 500 * time.Millisecond

// Engine owns the current-page state machine: it renders the current page to
// an in-memory buffer each cycle, writes it to the hardware through the
// guard, and reacts to input events by walking the transition table.
type Engine struct {
	guard    *Guard
	registry *Registry
	store    *store.Store
	events   <-chan input.Event

	// busMu serialises display bus access with any other bus users. It is
	// held for one full render-and-write sequence and released before
	// blocking on input.
	busMu sync.Locker

	// Dump handles the diagnostic gesture (short press on the home page).
	// It runs on its own goroutine and must not assume the display loop
	// waits for it. Defaults to logging the store contents.
	Dump func(*store.Store)

	period      time.Duration
	current     PageID
	start       time.Time
	lastInputAt time.Time
}

// NewEngine creates a display engine showing the home page.
func NewEngine(guard *Guard, registry *Registry, ds *store.Store, events <-chan input.Event, busMu sync.Locker) *Engine {
	return &Engine{
		guard:    guard,
		registry: registry,
		store:    ds,
		events:   events,
		busMu:    busMu,
		Dump:     logDump,
		period:   UpdatePeriod,
		current:  HomePage,
	}
}

func logDump(ds *store.Store) {
	ds.Dump(log.Writer())
}

// CurrentPage returns the page currently shown.
func (e *Engine) CurrentPage() PageID {
	return e.current
}

// IsShowing reports whether the published display page equals page. Other
// components use this via the store rather than holding an engine reference.
func IsShowing(ds *store.Store, page PageID) bool {
	current, age := ds.GetInt32(store.DisplayPage, 0)
	return age != store.InvalidAge && PageID(current) == page
}

// Run initialises the display and loops until the context is cancelled.
// Initialisation failure is returned (fatal to the caller); anything after
// that is logged and survived.
func (e *Engine) Run(ctx context.Context) error {
	now := time.Now()
	e.start = now
	e.lastInputAt = now

	e.busMu.Lock()
	err := e.guard.Reset()
	if err == nil {
		err = e.guard.Clear()
	}
	e.busMu.Unlock()
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	if err := e.guard.SetBacklight(true); err != nil {
		log.Printf("display: backlight on: %v", err)
	}
	e.store.SetInt32(store.DisplayPage, 0, int32(e.current))
	log.Printf("display: task started on page %s", e.registry.Name(e.current))

	timer := time.NewTimer(e.period)
	defer timer.Stop()
	for {
		e.renderFrame(time.Now())

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.period)

		select {
		case <-ctx.Done():
			log.Printf("display: task stopping")
			return nil
		case ev := <-e.events:
			e.handleInput(ev, time.Now())
		case <-timer.C:
		}

		e.checkBacklight(time.Now())
	}
}

// renderFrame composes the current page and writes it row by row under the
// bus lock. A write that fails through the guard's whole retry budget skips
// the rest of the frame; the next cycle tries again.
func (e *Engine) renderFrame(now time.Time) {
	var buf Buffer
	e.registry.Render(&buf, e.current, RenderContext{
		Store:  e.store,
		Now:    now,
		Uptime: now.Sub(e.start),
	})
	buf.Pad()

	e.busMu.Lock()
	defer e.busMu.Unlock()
	for row := 0; row < lcd.Rows; row++ {
		if err := e.guard.MoveCursor(0, row); err != nil {
			log.Printf("display: frame abandoned: %v", err)
			return
		}
		if err := e.guard.WriteString(buf[row]); err != nil {
			log.Printf("display: frame abandoned: %v", err)
			return
		}
	}
}

// handleInput wakes the backlight, applies the transition table and publishes
// any page change to the store.
func (e *Engine) handleInput(ev input.Event, now time.Time) {
	log.Printf("display: input %v", ev)
	e.lastInputAt = now
	if err := e.guard.SetBacklight(true); err != nil {
		log.Printf("display: backlight on: %v", err)
	}

	next := NextPage(e.current, ev)
	if next != PageIgnore && next != e.current && next >= 0 && next < pageCount {
		e.current = next
		e.store.SetInt32(store.DisplayPage, 0, int32(next))
		log.Printf("display: page %s", e.registry.Name(next))

		// the controller accumulates addressing drift on long excursions;
		// re-initialise whenever navigation lands on the home page
		if next == HomePage {
			e.busMu.Lock()
			if err := e.guard.Reset(); err != nil {
				log.Printf("display: reset on home: %v", err)
			} else if err := e.guard.Clear(); err != nil {
				log.Printf("display: clear on home: %v", err)
			}
			e.busMu.Unlock()
		}
	}

	// short press on the home page dumps the store, without blocking the loop
	if e.current == HomePage && ev == input.ShortPress {
		go e.Dump(e.store)
	}
}

// checkBacklight switches the backlight off after the configured idle time.
// A zero timeout leaves it on.
func (e *Engine) checkBacklight(now time.Time) {
	timeout, _ := e.store.GetUint32(store.DisplayBacklightTimeout, 0)
	if timeout == 0 {
		return
	}
	if now.Sub(e.lastInputAt) > time.Duration(timeout)*time.Second {
		if err := e.guard.SetBacklight(false); err != nil {
			log.Printf("display: backlight off: %v", err)
		}
	}
}
