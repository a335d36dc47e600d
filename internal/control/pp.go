package control

import (
	"context"
	"log"
	"time"

	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// CycleState is the pool pump controller's state.
type CycleState uint32

const (
	CycleOff CycleState = iota
	CycleOn
	CyclePause
)

func (s CycleState) String() string {
	switch s {
	case CycleOff:
		return "OFF"
	case CycleOn:
		return "ON"
	case CyclePause:
		return "PAUSE"
	}
	return "INVALID"
}

// PP is the pool pump controller. When the circulation loop reports ON but
// the measured flow is at or below the configured threshold, it runs the pool
// pump through a configured number of ON/PAUSE cycles, then returns to OFF
// and waits for the trigger condition again.
//
// Cycle durations and the cycle count are read from the store on every
// evaluation, so an operator can retune a run in progress.
type PP struct {
	store *store.Store
	pumps pump.Actuator

	state      CycleState
	cycleStart time.Time
	remaining  uint32
}

// NewPP creates a pool pump controller in the OFF state.
func NewPP(ds *store.Store, pumps pump.Actuator) *PP {
	return &PP{store: ds, pumps: pumps}
}

// State returns the controller's current state.
func (p *PP) State() CycleState {
	return p.state
}

// Remaining returns how many ON/PAUSE cycles are left after the current one.
func (p *PP) Remaining() uint32 {
	return p.remaining
}

func (p *PP) forceOff() {
	p.state = CycleOff
	if err := p.pumps.SetPP(pump.Off); err != nil {
		log.Printf("control: pp force off: %v", err)
	}
	p.store.SetUint32(store.ControlStatePP, 0, uint32(p.state))
}

func (p *PP) transition(to CycleState, actuate pump.State, now time.Time) {
	p.state = to
	p.cycleStart = now
	log.Printf("control: pp %v (remaining %d)", p.state, p.remaining)
	if err := p.pumps.SetPP(actuate); err != nil {
		log.Printf("control: pp actuate: %v", err)
	}
	p.store.SetUint32(store.ControlStatePP, 0, uint32(p.state))
}

// Tick evaluates one control cycle.
func (p *PP) Tick(now time.Time) {
	switch p.state {
	case CycleOff:
		flow, _ := p.store.GetFloat(store.FlowRate, 0)
		cpState, _ := p.store.GetUint32(store.ControlStateCP, 0)
		threshold, _ := p.store.GetFloat(store.ControlFlowThreshold, 0)

		if pump.State(cpState) == pump.On && flow <= threshold {
			n, _ := p.store.GetUint32(store.ControlPPCycleCount, 0)
			if n == 0 {
				// cycling disabled
				return
			}
			p.remaining = n - 1 // the current cycle counts as the first
			p.transition(CycleOn, pump.On, now)
		}

	case CycleOn:
		duration, _ := p.store.GetFloat(store.ControlPPCycleOnDuration, 0)
		if !now.Before(p.cycleStart.Add(seconds(duration))) {
			p.transition(CyclePause, pump.Off, now)
		}

	case CyclePause:
		duration, _ := p.store.GetFloat(store.ControlPPCyclePauseDuration, 0)
		if now.Before(p.cycleStart.Add(seconds(duration))) {
			return
		}
		if p.remaining > 0 {
			p.remaining--
			p.transition(CycleOn, pump.On, now)
		} else {
			p.transition(CycleOff, pump.Off, now)
		}

	default:
		log.Printf("control: pp invalid state %d, resetting", p.state)
		p.forceOff()
	}

	commanded := pump.Off
	if p.state == CycleOn {
		commanded = pump.On
	}
	if !reportedMatches(p.store, store.PumpPPState, commanded) {
		log.Printf("control: pp reported state disagrees with commanded %v", commanded)
	}
}

// Run executes the control loop until the context is cancelled, holding the
// pump off through the settling delay first.
func (p *PP) Run(ctx context.Context) {
	log.Printf("control: pp task started")
	p.forceOff()

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
			log.Printf("control: pp task stopping")
			return
		case <-ticker.C:
			p.Tick(time.Now())
		}
	}
}
