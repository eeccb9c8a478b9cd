// Package hpd owns the Hot Plug Detect output line and sequences the four
// line behaviors: assert, de-assert, timed pulse, and full reconnect cycle.
// Like internal/logic it takes time as a parameter so tests can drive it
// with a synthetic clock; the only side effects go through the Line handle
// injected at construction.
package hpd

import "time"

// State is the logical state the line reports to the HDMI source.
type State string

const (
	StateConnected    State = "CONNECTED"
	StateDisconnected State = "DISCONNECTED"
)

// Phase identifies the sequencer's timed-sequence state machine position.
type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhasePulsing      Phase = "PULSING"
	PhaseReconnecting Phase = "RECONNECTING"
)

// Command is a sequencer operation. Pulse and Reconnect carry no payload;
// their dwell durations are fixed at construction.
type Command string

const (
	CommandAssert    Command = "ASSERT"
	CommandDeassert  Command = "DEASSERT"
	CommandPulse     Command = "PULSE"
	CommandReconnect Command = "RECONNECT"
)

// EventType describes a line state change to be published.
type EventType string

const (
	EventAssert         EventType = "HPD_ASSERT"
	EventDeassert       EventType = "HPD_DEASSERT"
	EventPulseStart     EventType = "PULSE_START"
	EventPulseEnd       EventType = "PULSE_END"
	EventReconnectStart EventType = "RECONNECT_START"
	EventReconnectEnd   EventType = "RECONNECT_END"
	EventWatchdogFault  EventType = "WATCHDOG_FAULT"
)

// Event is a line state change produced by Issue or Tick.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     State
	Busy      bool
}

// Counts tracks sequencer activity since startup.
type Counts struct {
	Asserts     int
	Deasserts   int
	Pulses      int
	Reconnects  int
	DroppedBusy int
	Faults      int
}

// Line drives the physical HPD output. Implementations live in
// internal/gpio; the fake there records levels for tests.
type Line interface {
	// Set drives the line high (asserted) when active is true.
	Set(active bool) error
}

// Default dwell durations. The HDMI spec requires a minimum 100ms low pulse
// for an EDID re-read; 200ms is the recommended margin. The reconnect dwell
// is longer so the source performs a full re-negotiation instead of a quick
// re-read. MaxBusy bounds how long a timed sequence may hold the line
// before the watchdog forces the safe state.
const (
	DefaultPulseDwell     = 200 * time.Millisecond
	DefaultReconnectDwell = 500 * time.Millisecond
	DefaultMaxBusy        = 2 * time.Second
)
