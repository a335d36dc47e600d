package pump

// FakeActuator records relay commands for test assertions.
type FakeActuator struct {
	// CP and PP contain every commanded state, in order.
	CP []State
	PP []State

	// SetError, if set, is returned by SetCP and SetPP.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeActuator creates a FakeActuator for testing.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetCP records the circulation pump command.
func (f *FakeActuator) SetCP(s State) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.CP = append(f.CP, s)
	return nil
}

// SetPP records the pool pump command.
func (f *FakeActuator) SetPP(s State) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.PP = append(f.PP, s)
	return nil
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded commands.
func (f *FakeActuator) Reset() {
	f.CP = nil
	f.PP = nil
	f.Closed = false
	f.SetError = nil
}
