// Package pump drives the two pump relays with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package pump

// State is a commanded pump state.
type State uint32

const (
	Off State = iota
	On
)

func (s State) String() string {
	if s == On {
		return "ON"
	}
	return "OFF"
}

// Actuator switches the circulation pump (CP) and pool pump (PP) relays.
// Calls are idempotent-safe: setting the current state again is a no-op at
// the relay. Controllers only call on state transitions to minimise wear.
type Actuator interface {
	SetCP(State) error
	SetPP(State) error

	// Close releases relay resources, leaving both relays de-energised.
	Close() error
}

// Default relay pins (BCM numbering).
const (
	DefaultPinCP = 23
	DefaultPinPP = 24
)
