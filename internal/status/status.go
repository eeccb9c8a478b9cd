// Package status provides a thread-safe status tracker for the hpd-pilot
// daemon. It is designed to be read by HTTP handlers and (future) LED
// drivers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/hpd-pilot/internal/hpd"
)

// NetworkInfo contains network state reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	DebounceMs       int64
	LongPressMs      int64
	PulseDwellMs     int64
	ReconnectDwellMs int64
	MaxBusyMs        int64
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
	SerialPort       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Line          hpd.State
	Phase         hpd.Phase
	Busy          bool
	Baselined     bool
	Pressed       bool
	Counts        hpd.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets line state, sequencer phase, input state, and counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(line hpd.State, phase hpd.Phase, busy, baselined, pressed bool, counts hpd.Counts) {
	t.mu.Lock()
	t.snap.Line = line
	t.snap.Phase = phase
	t.snap.Busy = busy
	t.snap.Baselined = baselined
	t.snap.Pressed = pressed
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
