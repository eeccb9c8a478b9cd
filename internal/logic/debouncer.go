package logic

import "time"

// Debouncer filters a raw button sample stream into stable transitions.
// A raw reading must disagree with the stable state for a full debounce
// window before the stable state changes. Before the first stable window
// completes the debouncer is unbaselined and emits nothing; the first
// stable reading becomes the baseline without an event.
type Debouncer struct {
	window       time.Duration
	stable       bool
	baselined    bool
	pending      bool
	hasPending   bool
	pendingSince time.Time
}

// NewDebouncer creates a Debouncer with the given debounce window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Sample takes one polarity-normalized reading (true = pressed) and returns
// a transition if the stable state changed, nil otherwise. Must be called
// at the poll tick rate with a monotonic now.
func (d *Debouncer) Sample(pressed bool, now time.Time) *Transition {
	if !d.baselined {
		if !d.hasPending || d.pending != pressed {
			// Start (or restart) the baseline observation.
			d.pending = pressed
			d.hasPending = true
			d.pendingSince = now
			return nil
		}
		if now.Sub(d.pendingSince) >= d.window {
			d.stable = pressed
			d.baselined = true
			d.hasPending = false
		}
		return nil
	}

	if pressed == d.stable {
		// Agreement with stable state clears any pending disagreement.
		d.hasPending = false
		return nil
	}

	if !d.hasPending {
		d.pending = pressed
		d.hasPending = true
		d.pendingSince = now
		return nil
	}

	if now.Sub(d.pendingSince) < d.window {
		return nil
	}

	d.stable = pressed
	d.hasPending = false
	t := TransitionReleased
	if pressed {
		t = TransitionPressed
	}
	return &t
}

// Baselined reports whether an initial stable reading has been established.
func (d *Debouncer) Baselined() bool {
	return d.baselined
}

// Stable returns the current stable reading (false until baselined).
func (d *Debouncer) Stable() bool {
	return d.stable
}
