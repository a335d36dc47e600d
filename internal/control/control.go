// Package control contains the two pump control loops. Each loop owns its
// state machine exclusively, reads its inputs from the store every tick and
// commands the actuator only on state transitions. The loops never call each
// other: the pool pump controller observes the circulation controller solely
// through the state it publishes to the store.
//
// Transition decisions are in pure Tick methods taking an explicit time, so
// tests drive them without timers or hardware.
package control

import (
	"time"

	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// PollPeriod is the fixed control loop period.
const PollPeriod = 1000 * time.Millisecond

// SettleDelay is how long after boot the controllers hold their pumps off,
// giving the sensor tasks time to produce stable readings.
const SettleDelay = 10 * time.Second

// reportExpiry bounds how old an externally reported pump state may be and
// still be compared against the commanded state.
const reportExpiry = 15 * time.Second

// seconds converts a store-held duration in fractional seconds.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// reportedMatches compares a reported pump-state resource against the
// commanded state. Stale or never-written reports are not comparable and
// count as matching.
func reportedMatches(ds *store.Store, id store.ID, commanded pump.State) bool {
	reported, age := ds.GetUint32(id, 0)
	if age == store.InvalidAge || age > reportExpiry {
		return true
	}
	return pump.State(reported) == commanded
}
