//go:build !linux

package pump

import "errors"

// RealActuator is not available on non-Linux platforms.
type RealActuator struct{}

// NewRealActuator returns an error on non-Linux platforms.
func NewRealActuator(chipName string, pinCP, pinPP int) (*RealActuator, error) {
	return nil, errors.New("pump: not supported on this platform (requires Linux)")
}

// SetCP is not implemented on non-Linux platforms.
func (r *RealActuator) SetCP(State) error {
	return errors.New("pump: not supported")
}

// SetPP is not implemented on non-Linux platforms.
func (r *RealActuator) SetPP(State) error {
	return errors.New("pump: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealActuator) Close() error {
	return nil
}
