//go:build linux

package input

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource decodes a quadrature rotary encoder and a push button from
// Linux GPIO edge events and delivers gestures on a bounded channel.
type RealSource struct {
	chip   *gpiocdev.Chip
	encA   *gpiocdev.Line
	encB   *gpiocdev.Line
	button *gpiocdev.Line
	events chan Event

	mu        sync.Mutex
	pressedAt time.Time
	pressed   bool
}

// NewRealSource requests the encoder and button lines and starts delivering
// events. Encoder pin A is edge-triggered; pin B is sampled on each A edge to
// determine direction. The button reports on both edges so press duration can
// classify short against long.
func NewRealSource(chipName string, pinEncA, pinEncB, pinButton int) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSource{
		chip:   chip,
		events: make(chan Event, QueueDepth),
	}

	encB, err := chip.RequestLine(pinEncB, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request encoder pin %d: %w", pinEncB, err)
	}
	s.encB = encB

	encA, err := chip.RequestLine(pinEncA,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(s.handleEncoderEdge),
		gpiocdev.WithDebounce(2*time.Millisecond))
	if err != nil {
		encB.Close()
		chip.Close()
		return nil, fmt.Errorf("request encoder pin %d: %w", pinEncA, err)
	}
	s.encA = encA

	button, err := chip.RequestLine(pinButton,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleButtonEdge),
		gpiocdev.WithDebounce(10*time.Millisecond))
	if err != nil {
		encA.Close()
		encB.Close()
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}
	s.button = button

	return s, nil
}

// Events returns the bounded gesture queue.
func (s *RealSource) Events() <-chan Event {
	return s.events
}

// handleEncoderEdge fires on a falling edge of encoder pin A. The level of
// pin B at that instant gives the rotation direction.
func (s *RealSource) handleEncoderEdge(evt gpiocdev.LineEvent) {
	b, err := s.encB.Value()
	if err != nil {
		log.Printf("input: read encoder B: %v", err)
		return
	}
	if b == 0 {
		s.deliver(Clockwise)
	} else {
		s.deliver(CounterClockwise)
	}
}

// handleButtonEdge tracks press and release edges. The line is pulled up, so
// a falling edge is a press and a rising edge is a release.
func (s *RealSource) handleButtonEdge(evt gpiocdev.LineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt.Type {
	case gpiocdev.LineEventFallingEdge:
		s.pressed = true
		s.pressedAt = time.Now()
	case gpiocdev.LineEventRisingEdge:
		if !s.pressed {
			return
		}
		s.pressed = false
		s.deliver(ClassifyPress(time.Since(s.pressedAt)))
	}
}

// deliver enqueues without blocking the GPIO event goroutine. A full queue
// drops the gesture.
func (s *RealSource) deliver(e Event) {
	select {
	case s.events <- e:
	default:
		log.Printf("input: queue full, dropping %v", e)
	}
}

// Close releases the GPIO lines. The event channel is not closed; the display
// engine stops consuming when its context is cancelled.
func (s *RealSource) Close() error {
	var errs []error
	for _, c := range []struct {
		name string
		line *gpiocdev.Line
	}{
		{"encoder A", s.encA},
		{"encoder B", s.encB},
		{"button", s.button},
	} {
		if c.line == nil {
			continue
		}
		if err := c.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s line: %w", c.name, err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
