//go:build linux

package pump

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealActuator drives relay modules from Linux GPIO output lines.
type RealActuator struct {
	chip   *gpiocdev.Chip
	cpLine *gpiocdev.Line
	ppLine *gpiocdev.Line
}

// NewRealActuator requests the two relay lines as outputs, initially low
// (relays de-energised, pumps off).
func NewRealActuator(chipName string, pinCP, pinPP int) (*RealActuator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	cpLine, err := chip.RequestLine(pinCP, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request CP pin %d: %w", pinCP, err)
	}

	ppLine, err := chip.RequestLine(pinPP, gpiocdev.AsOutput(0))
	if err != nil {
		cpLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request PP pin %d: %w", pinPP, err)
	}

	return &RealActuator{
		chip:   chip,
		cpLine: cpLine,
		ppLine: ppLine,
	}, nil
}

// SetCP energises or releases the circulation pump relay.
func (r *RealActuator) SetCP(s State) error {
	if err := r.cpLine.SetValue(lineValue(s)); err != nil {
		return fmt.Errorf("set CP relay: %w", err)
	}
	return nil
}

// SetPP energises or releases the pool pump relay.
func (r *RealActuator) SetPP(s State) error {
	if err := r.ppLine.SetValue(lineValue(s)); err != nil {
		return fmt.Errorf("set PP relay: %w", err)
	}
	return nil
}

// Close releases both relays and the chip. Pumps are switched off first so a
// daemon restart never leaves a pump running unsupervised.
func (r *RealActuator) Close() error {
	var errs []error

	if r.cpLine != nil {
		if err := r.cpLine.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release CP relay: %w", err))
		}
		if err := r.cpLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close CP line: %w", err))
		}
	}
	if r.ppLine != nil {
		if err := r.ppLine.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release PP relay: %w", err))
		}
		if err := r.ppLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close PP line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func lineValue(s State) int {
	if s == On {
		return 1
	}
	return 0
}
