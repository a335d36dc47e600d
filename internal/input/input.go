// Package input delivers rotary encoder and push-button events to the
// display engine through a bounded queue. The real implementation decodes
// Linux GPIO edge events; tests feed the queue directly.
package input

import "time"

// Event is one operator input gesture.
type Event int

const (
	Clockwise Event = iota
	CounterClockwise
	ShortPress
	LongPress
)

func (e Event) String() string {
	switch e {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	case ShortPress:
		return "short"
	case LongPress:
		return "long"
	}
	return "invalid"
}

// QueueDepth is the capacity of the event queue. The display engine is the
// sole consumer; events arriving while the queue is full are dropped.
const QueueDepth = 10

// LongPressMin is the hold duration at which a button press becomes long.
const LongPressMin = time.Second

// ClassifyPress maps a button hold duration to a press event.
func ClassifyPress(held time.Duration) Event {
	if held >= LongPressMin {
		return LongPress
	}
	return ShortPress
}

// Default input pins (BCM numbering).
const (
	DefaultPinButton   = 17
	DefaultPinEncoderA = 27
	DefaultPinEncoderB = 22
)
