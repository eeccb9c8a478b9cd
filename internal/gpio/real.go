//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealIO holds both lines on the GPIO character device. It implements
// Button and Line.
type RealIO struct {
	chip   *gpiocdev.Chip
	button *gpiocdev.Line
	hpd    *gpiocdev.Line
}

// NewRealIO requests the button and HPD lines from gpiochip0. The button
// is input with pull-up (pressed pulls it low); the HPD output starts low
// so the source sees no sink until the daemon asserts deliberately.
func NewRealIO(pinButton, pinHPD int) (*RealIO, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	button, err := chip.RequestLine(pinButton, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}

	hpd, err := chip.RequestLine(pinHPD, gpiocdev.AsOutput(0))
	if err != nil {
		button.Close()
		chip.Close()
		return nil, fmt.Errorf("request hpd pin %d: %w", pinHPD, err)
	}

	return &RealIO{
		chip:   chip,
		button: button,
		hpd:    hpd,
	}, nil
}

// Read returns true while the button is pressed.
// Inverts the raw level: active low (0) = pressed.
func (r *RealIO) Read() (bool, error) {
	v, err := r.button.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 0, nil
}

// Set drives the HPD line.
func (r *RealIO) Set(active bool) error {
	v := 0
	if active {
		v = 1
	}
	if err := r.hpd.SetValue(v); err != nil {
		return fmt.Errorf("set hpd pin: %w", err)
	}
	return nil
}

// Close releases GPIO resources. The HPD line is driven low first so a
// restart never leaves the source believing a sink is attached while the
// daemon is down.
func (r *RealIO) Close() error {
	var errs []error

	if r.hpd != nil {
		if err := r.hpd.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("lower hpd pin: %w", err))
		}
		if err := r.hpd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close hpd pin: %w", err))
		}
	}
	if r.button != nil {
		if err := r.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
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
