package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/hpd-pilot/internal/hpd"
)

func testConfig() Config {
	return Config{
		PollMs:           5,
		DebounceMs:       50,
		LongPressMs:      600,
		PulseDwellMs:     200,
		ReconnectDwellMs: 500,
		MaxBusyMs:        2000,
		HeartbeatMs:      900000,
		Broker:           "tcp://broker:1883",
		HTTPAddr:         ":8080",
	}
}

func TestTrackerUpdateAndSnapshot(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	counts := hpd.Counts{Asserts: 2, Pulses: 1, DroppedBusy: 3}
	tr.Update(hpd.StateConnected, hpd.PhasePulsing, true, true, false, counts)
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.Line != hpd.StateConnected {
		t.Errorf("line: got %s", snap.Line)
	}
	if snap.Phase != hpd.PhasePulsing {
		t.Errorf("phase: got %s", snap.Phase)
	}
	if !snap.Busy {
		t.Error("busy: expected true")
	}
	if !snap.Baselined {
		t.Error("baselined: expected true")
	}
	if snap.Counts != counts {
		t.Errorf("counts: got %+v", snap.Counts)
	}
	if !snap.MQTTConnected {
		t.Error("mqtt: expected connected")
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v", snap.StartTime)
	}
	if snap.Now.IsZero() {
		t.Error("snapshot should stamp Now")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	tr.Update(hpd.StateConnected, hpd.PhaseIdle, false, true, false, hpd.Counts{})
	snap := tr.Snapshot()

	// Later updates must not bleed into the taken snapshot.
	tr.Update(hpd.StateDisconnected, hpd.PhaseReconnecting, true, true, true, hpd.Counts{Reconnects: 1})

	if snap.Line != hpd.StateConnected {
		t.Errorf("snapshot mutated: line %s", snap.Line)
	}
	if snap.Busy {
		t.Error("snapshot mutated: busy")
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("uptime: got %v", snap.Uptime())
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Line:      hpd.StateConnected,
		Phase:     hpd.PhaseIdle,
		Baselined: true,
		Counts:    hpd.Counts{Asserts: 1, Pulses: 2, Faults: 1},
		StartTime: start,
		Now:       start.Add(time.Minute),
		Config:    testConfig(),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("FormatJSON output is not valid JSON: %v", err)
	}

	if parsed.Status.HPD != "CONNECTED" {
		t.Errorf("hpd: got %q", parsed.Status.HPD)
	}
	if parsed.Status.Phase != "IDLE" {
		t.Errorf("phase: got %q", parsed.Status.Phase)
	}
	if !parsed.Status.Ready {
		t.Error("ready: expected true")
	}
	if parsed.Status.UptimeSeconds != 60 {
		t.Errorf("uptime: got %d", parsed.Status.UptimeSeconds)
	}
	if parsed.Status.Counts.Pulses != 2 || parsed.Status.Counts.Faults != 1 {
		t.Errorf("counts: got %+v", parsed.Status.Counts)
	}
	if parsed.Status.Config.PulseDwellMs != 200 {
		t.Errorf("config pulse dwell: got %d", parsed.Status.Config.PulseDwellMs)
	}
	if parsed.Status.Event != "" {
		t.Errorf("web JSON should carry no event, got %q", parsed.Status.Event)
	}
}

func TestFormatJSONUnknownBeforeFirstUpdate(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.HPD != "UNKNOWN" {
		t.Errorf("expected UNKNOWN before first update, got %q", parsed.Status.HPD)
	}
	if parsed.Status.Phase != "IDLE" {
		t.Errorf("expected IDLE phase fallback, got %q", parsed.Status.Phase)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Line:      hpd.StateDisconnected,
		Phase:     hpd.PhaseIdle,
		StartTime: start,
		Now:       start,
		Config:    testConfig(),
		Network:   &NetworkInfo{Status: "connected", Type: "wifi", SSID: "attic"},
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", parsed.Status.Reason)
	}
	if parsed.Status.Network == nil || parsed.Status.Network.SSID != "attic" {
		t.Errorf("network: got %+v", parsed.Status.Network)
	}
}
