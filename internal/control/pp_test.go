package control

import (
	"testing"
	"time"

	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

func newPPFixture(cycleCount uint32, onSecs, pauseSecs float64) (*PP, *store.Store, *pump.FakeActuator) {
	ds := store.New()
	ds.SetFloat(store.ControlFlowThreshold, 0, 5.0)
	ds.SetUint32(store.ControlPPCycleCount, 0, cycleCount)
	ds.SetFloat(store.ControlPPCycleOnDuration, 0, onSecs)
	ds.SetFloat(store.ControlPPCyclePauseDuration, 0, pauseSecs)
	fake := pump.NewFakeActuator()
	return NewPP(ds, fake), ds, fake
}

func triggerPP(ds *store.Store) {
	ds.SetUint32(store.ControlStateCP, 0, uint32(pump.On))
	ds.SetFloat(store.FlowRate, 0, 2.0) // below threshold 5.0
}

func TestPPStaysOffWithoutTrigger(t *testing.T) {
	pp, ds, fake := newPPFixture(2, 30, 60)
	now := time.Now()

	// CP off: no trigger regardless of flow.
	ds.SetUint32(store.ControlStateCP, 0, uint32(pump.Off))
	ds.SetFloat(store.FlowRate, 0, 2.0)
	pp.Tick(now)
	if pp.State() != CycleOff {
		t.Fatalf("state = %v, want OFF", pp.State())
	}

	// CP on but flow above threshold: still no trigger.
	ds.SetUint32(store.ControlStateCP, 0, uint32(pump.On))
	ds.SetFloat(store.FlowRate, 0, 8.0)
	pp.Tick(now.Add(PollPeriod))
	if pp.State() != CycleOff {
		t.Fatalf("state = %v, want OFF", pp.State())
	}
	if len(fake.PP) != 0 {
		t.Errorf("commands = %v, want none", fake.PP)
	}
}

func TestPPZeroCycleCountDisablesCycling(t *testing.T) {
	pp, ds, fake := newPPFixture(0, 30, 60)
	triggerPP(ds)

	for i := 0; i < 5; i++ {
		pp.Tick(time.Now().Add(time.Duration(i) * PollPeriod))
	}

	if pp.State() != CycleOff {
		t.Errorf("state = %v, want OFF", pp.State())
	}
	if len(fake.PP) != 0 {
		t.Errorf("commands = %v, want none", fake.PP)
	}
}

// runCycles drives the controller with 1-second ticks until it returns to
// OFF or the deadline passes, and returns the commanded sequence.
func runCycles(t *testing.T, pp *PP, fake *pump.FakeActuator, start time.Time, limit time.Duration) []pump.State {
	t.Helper()
	for elapsed := time.Duration(0); elapsed <= limit; elapsed += PollPeriod {
		pp.Tick(start.Add(elapsed))
		if pp.State() == CycleOff && len(fake.PP) > 0 {
			return fake.PP
		}
	}
	t.Fatalf("controller did not return to OFF within %v (state %v)", limit, pp.State())
	return nil
}

func TestPPSingleCycle(t *testing.T) {
	pp, ds, fake := newPPFixture(1, 30, 60)
	triggerPP(ds)
	start := time.Now()

	got := runCycles(t, pp, fake, start, 5*time.Minute)

	// One cycle: ON, then PAUSE (pump off), then OFF again.
	want := []pump.State{pump.On, pump.Off, pump.Off}
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("commands = %v, want %v", got, want)
		}
	}
}

func TestPPThreeCycles(t *testing.T) {
	pp, ds, fake := newPPFixture(3, 30, 60)
	triggerPP(ds)
	start := time.Now()

	got := runCycles(t, pp, fake, start, 15*time.Minute)

	// Exactly three ON commands, each followed by an off, plus the final
	// PAUSE -> OFF transition.
	onCount := 0
	for _, s := range got {
		if s == pump.On {
			onCount++
		}
	}
	if onCount != 3 {
		t.Errorf("ON commands = %d, want 3 (sequence %v)", onCount, got)
	}
	if got[len(got)-1] != pump.Off {
		t.Errorf("last command = %v, want OFF", got[len(got)-1])
	}
	if len(got) != 7 {
		t.Errorf("command count = %d, want 7 (sequence %v)", len(got), got)
	}
}

func TestPPTwoCycleScenario(t *testing.T) {
	pp, ds, _ := newPPFixture(2, 30, 60)
	triggerPP(ds)
	start := time.Now()

	// Trigger: OFF -> ON with one cycle remaining after the current.
	pp.Tick(start)
	if pp.State() != CycleOn {
		t.Fatalf("state = %v, want ON", pp.State())
	}
	if pp.Remaining() != 1 {
		t.Fatalf("remaining = %d, want 1", pp.Remaining())
	}

	// Before the on-duration elapses nothing changes.
	pp.Tick(start.Add(29 * time.Second))
	if pp.State() != CycleOn {
		t.Fatalf("state at 29s = %v, want ON", pp.State())
	}

	// On-duration elapsed: ON -> PAUSE.
	pp.Tick(start.Add(30 * time.Second))
	if pp.State() != CyclePause {
		t.Fatalf("state at 30s = %v, want PAUSE", pp.State())
	}

	// Pause elapsed with remaining=1: back to ON, remaining drops to 0.
	pp.Tick(start.Add(90 * time.Second))
	if pp.State() != CycleOn {
		t.Fatalf("state at 90s = %v, want ON", pp.State())
	}
	if pp.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", pp.Remaining())
	}

	// Second on-duration: ON -> PAUSE.
	pp.Tick(start.Add(120 * time.Second))
	if pp.State() != CyclePause {
		t.Fatalf("state at 120s = %v, want PAUSE", pp.State())
	}

	// Final pause with remaining=0: PAUSE -> OFF.
	pp.Tick(start.Add(180 * time.Second))
	if pp.State() != CycleOff {
		t.Fatalf("state at 180s = %v, want OFF", pp.State())
	}
}

func TestPPDurationsReadFreshEachTick(t *testing.T) {
	pp, ds, _ := newPPFixture(1, 600, 60)
	triggerPP(ds)
	start := time.Now()

	pp.Tick(start)
	if pp.State() != CycleOn {
		t.Fatalf("state = %v, want ON", pp.State())
	}

	// Shorten the on-duration mid-run; the next tick must honour it.
	ds.SetFloat(store.ControlPPCycleOnDuration, 0, 10)
	pp.Tick(start.Add(15 * time.Second))
	if pp.State() != CyclePause {
		t.Errorf("state after retune = %v, want PAUSE", pp.State())
	}
}

func TestPPPublishesState(t *testing.T) {
	pp, ds, _ := newPPFixture(1, 30, 60)
	triggerPP(ds)

	pp.Tick(time.Now())

	published, _ := ds.GetUint32(store.ControlStatePP, 0)
	if CycleState(published) != CycleOn {
		t.Errorf("published state = %v, want ON", CycleState(published))
	}
}
