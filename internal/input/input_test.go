package input

import (
	"testing"
	"time"
)

func TestClassifyPress(t *testing.T) {
	cases := []struct {
		held time.Duration
		want Event
	}{
		{10 * time.Millisecond, ShortPress},
		{999 * time.Millisecond, ShortPress},
		{LongPressMin, LongPress},
		{5 * time.Second, LongPress},
	}
	for _, c := range cases {
		if got := ClassifyPress(c.held); got != c.want {
			t.Errorf("ClassifyPress(%v) = %v, want %v", c.held, got, c.want)
		}
	}
}

func TestEventStrings(t *testing.T) {
	cases := map[Event]string{
		Clockwise:        "cw",
		CounterClockwise: "ccw",
		ShortPress:       "short",
		LongPress:        "long",
		Event(42):        "invalid",
	}
	for ev, want := range cases {
		if got := ev.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", ev, got, want)
		}
	}
}
