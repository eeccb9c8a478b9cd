// Package logic contains the pure button-input pipeline: debouncing raw
// samples into clean transitions and classifying completed presses as
// short or long.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Transition is a debounced edge on the button line.
type Transition string

const (
	TransitionPressed  Transition = "PRESSED"
	TransitionReleased Transition = "RELEASED"
)

// PressKind classifies a completed press by its duration.
type PressKind string

const (
	PressShort PressKind = "SHORT"
	PressLong  PressKind = "LONG"
)

// Default timing constants. The debounce window covers mechanical switch
// bounce; the long-press threshold separates a toggle from a pulse request.
const (
	DefaultDebounce  = 50 * time.Millisecond
	DefaultLongPress = 600 * time.Millisecond
)
