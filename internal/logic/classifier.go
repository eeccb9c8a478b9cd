package logic

import "time"

// Classifier turns debounced transitions into classified presses.
// A press at or above the threshold is long, below it short.
type Classifier struct {
	threshold time.Duration
	pressedAt time.Time
	open      bool
}

// NewClassifier creates a Classifier with the given long-press threshold.
func NewClassifier(threshold time.Duration) *Classifier {
	return &Classifier{threshold: threshold}
}

// OnTransition consumes one debounced transition. On a release that closes
// an open press it returns the press kind; otherwise nil. A release with no
// matching press (should not happen with a correct debouncer) is ignored.
func (c *Classifier) OnTransition(t Transition, now time.Time) *PressKind {
	switch t {
	case TransitionPressed:
		c.pressedAt = now
		c.open = true
	case TransitionReleased:
		if !c.open {
			return nil
		}
		c.open = false
		kind := PressShort
		if now.Sub(c.pressedAt) >= c.threshold {
			kind = PressLong
		}
		return &kind
	}
	return nil
}

// Pressed reports whether a press is currently open.
func (c *Classifier) Pressed() bool {
	return c.open
}
