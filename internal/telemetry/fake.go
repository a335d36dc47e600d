package telemetry

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// PumpEvents contains all pump events that were published.
	PumpEvents []PumpEvent

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// Dumps contains all diagnostic dumps that were published.
	Dumps [][]byte

	// PublishError, if set, is returned by every Publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishPump records the pump event.
func (f *FakePublisher) PublishPump(event PumpEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.PumpEvents = append(f.PumpEvents, event)
	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// PublishDump records the dump.
func (f *FakePublisher) PublishDump(dump []byte) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Dumps = append(f.Dumps, dump)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.PumpEvents = nil
	f.SystemEvents = nil
	f.Dumps = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
