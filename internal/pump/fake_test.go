package pump

import (
	"errors"
	"testing"
)

func TestFakeActuatorRecordsCommands(t *testing.T) {
	f := NewFakeActuator()

	if err := f.SetCP(On); err != nil {
		t.Fatalf("SetCP: %v", err)
	}
	if err := f.SetPP(On); err != nil {
		t.Fatalf("SetPP: %v", err)
	}
	if err := f.SetCP(Off); err != nil {
		t.Fatalf("SetCP: %v", err)
	}

	if len(f.CP) != 2 || f.CP[0] != On || f.CP[1] != Off {
		t.Errorf("CP commands = %v, want [ON OFF]", f.CP)
	}
	if len(f.PP) != 1 || f.PP[0] != On {
		t.Errorf("PP commands = %v, want [ON]", f.PP)
	}
}

func TestFakeActuatorSetError(t *testing.T) {
	f := NewFakeActuator()
	boom := errors.New("relay stuck")
	f.SetError = boom

	if err := f.SetCP(On); !errors.Is(err, boom) {
		t.Fatalf("SetCP err = %v, want %v", err, boom)
	}
	if err := f.SetPP(On); !errors.Is(err, boom) {
		t.Fatalf("SetPP err = %v, want %v", err, boom)
	}
	// Failed commands are not recorded.
	if len(f.CP) != 0 || len(f.PP) != 0 {
		t.Errorf("commands recorded despite error: CP=%v PP=%v", f.CP, f.PP)
	}
}

func TestFakeActuatorCloseAndReset(t *testing.T) {
	f := NewFakeActuator()
	f.SetCP(On)
	f.SetError = errors.New("x")
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("Closed not set")
	}

	f.Reset()
	if f.CP != nil || f.PP != nil || f.Closed || f.SetError != nil {
		t.Errorf("Reset left state behind: %+v", f)
	}
}
