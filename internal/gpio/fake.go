package gpio

import (
	"errors"
	"time"
)

// FakeButton is a test double that returns scripted button readings.
type FakeButton struct {
	// Samples contains scripted pressed values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples []bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButton) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the button to the beginning of its samples.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}

// Write is a single recorded output level with the wall time it was set.
type Write struct {
	Active bool
	At     time.Time
}

// FakeLine records every level written to the HPD output.
type FakeLine struct {
	// Level is the most recently written level.
	Level bool

	// History contains every write in order.
	History []Write

	// Now, if set, timestamps each write (for dwell assertions).
	Now func() time.Time

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeLine creates a FakeLine starting low.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// Set records the level.
func (f *FakeLine) Set(active bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Level = active
	w := Write{Active: active}
	if f.Now != nil {
		w.At = f.Now()
	}
	f.History = append(f.History, w)
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.Closed = true
	return nil
}

// Levels returns just the recorded levels, in order.
func (f *FakeLine) Levels() []bool {
	out := make([]bool, len(f.History))
	for i, w := range f.History {
		out[i] = w.Active
	}
	return out
}
