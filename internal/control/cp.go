package control

import (
	"context"
	"log"
	"time"

	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// CP is the circulation pump controller: a two-state hysteresis loop on the
// differential between the warm sensor (T1, instance 0) and the cool sensor
// (T2, instance 1). The pump turns on when T1-T2 reaches the on-delta and off
// when it falls to the off-delta; the gap between the deltas prevents
// oscillation near a single setpoint.
type CP struct {
	store *store.Store
	pumps pump.Actuator
	state pump.State
}

// NewCP creates a circulation pump controller in the OFF state.
func NewCP(ds *store.Store, pumps pump.Actuator) *CP {
	return &CP{store: ds, pumps: pumps}
}

// State returns the controller's current state.
func (c *CP) State() pump.State {
	return c.state
}

// forceOff drives the pump off and publishes the OFF state, the safe default
// on (re)initialisation.
func (c *CP) forceOff() {
	c.state = pump.Off
	if err := c.pumps.SetCP(pump.Off); err != nil {
		log.Printf("control: cp force off: %v", err)
	}
	c.store.SetUint32(store.ControlStateCP, 0, uint32(c.state))
}

// Tick evaluates one control cycle. The actuator is commanded only when the
// state changes.
func (c *CP) Tick(now time.Time) {
	t1, _ := c.store.GetFloat(store.TempValue, 0)
	t2, _ := c.store.GetFloat(store.TempValue, 1)

	transition := false
	switch c.state {
	case pump.Off:
		onDelta, _ := c.store.GetFloat(store.ControlCPOnDelta, 0)
		if t1-t2 >= onDelta {
			c.state = pump.On
			transition = true
		}
	case pump.On:
		offDelta, _ := c.store.GetFloat(store.ControlCPOffDelta, 0)
		if t1-t2 <= offDelta {
			c.state = pump.Off
			transition = true
		}
	}

	if transition {
		log.Printf("control: cp %v (T1 %.1f, T2 %.1f)", c.state, t1, t2)
		if err := c.pumps.SetCP(c.state); err != nil {
			log.Printf("control: cp actuate: %v", err)
		}
		c.store.SetUint32(store.ControlStateCP, 0, uint32(c.state))
	}

	if !reportedMatches(c.store, store.PumpCPState, c.state) {
		log.Printf("control: cp reported state disagrees with commanded %v", c.state)
	}
}

// Run executes the control loop until the context is cancelled. The pump is
// held off through the settling delay, then evaluated every PollPeriod on a
// fixed-rate ticker so per-tick processing time does not drift the period.
func (c *CP) Run(ctx context.Context) {
	log.Printf("control: cp task started")
	c.forceOff()

	select {
	case <-ctx.Done():
		return
	case <-time.After(SettleDelay):
	}

	ticker := time.NewTicker(PollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("control: cp task stopping")
			return
		case <-ticker.C:
			c.Tick(time.Now())
		}
	}
}
