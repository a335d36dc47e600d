//go:build !linux

package input

import "errors"

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(chipName string, pinEncA, pinEncB, pinButton int) (*RealSource, error) {
	return nil, errors.New("input: not supported on this platform (requires Linux)")
}

// Events is not implemented on non-Linux platforms.
func (s *RealSource) Events() <-chan Event {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
