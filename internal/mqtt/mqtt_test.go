package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/hpd-pilot/internal/hpd"
)

func TestFormatPayload(t *testing.T) {
	event := hpd.Event{
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Type:      hpd.EventPulseStart,
		State:     hpd.StateDisconnected,
		Busy:      true,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if payload.Hpd.Timestamp != "2026-01-01T12:00:00Z" {
		t.Errorf("timestamp: got %q", payload.Hpd.Timestamp)
	}
	if payload.Hpd.Event != "PULSE_START" {
		t.Errorf("event: got %q", payload.Hpd.Event)
	}
	if payload.Hpd.State != "DISCONNECTED" {
		t.Errorf("state: got %q", payload.Hpd.State)
	}
	if !payload.Hpd.Busy {
		t.Error("busy: expected true")
	}
}

func TestFormatPayloadEnvelope(t *testing.T) {
	event := hpd.Event{
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Type:      hpd.EventAssert,
		State:     hpd.StateConnected,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Envelope key must stay stable for downstream consumers.
	if !strings.HasPrefix(string(data), `{"hpd":`) {
		t.Errorf("expected hpd envelope, got %s", data)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload SystemPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", payload.System.Event)
	}
	if payload.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", payload.System.Reason)
	}
	if payload.System.Timestamp != "2026-01-01T12:00:00Z" {
		t.Errorf("timestamp: got %q", payload.System.Timestamp)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	data, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", data)
	}
}

func TestFormatSystemPayloadZeroTimestampOmitted(t *testing.T) {
	// The LWT payload is registered at connect time and has no timestamp.
	data, err := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "connection lost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "timestamp") {
		t.Errorf("zero timestamp should be omitted, got %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := hpd.Event{
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Type:      hpd.EventAssert,
		State:     hpd.StateConnected,
	}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Type != hpd.EventAssert {
		t.Errorf("expected 1 recorded event, got %v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 recorded payload, got %d", len(f.Payloads))
	}

	sys := SystemEvent{Timestamp: event.Timestamp, Event: "STARTUP", Retained: true}
	if err := f.PublishSystem(sys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("expected 1 recorded system event, got %v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(hpd.Event{}); err == nil {
		t.Error("expected publish error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}
}

func TestFakePublisherCommands(t *testing.T) {
	f := NewFakePublisher()

	f.InjectCommand("pulse")

	select {
	case w := <-f.Commands():
		if w != "pulse" {
			t.Errorf("expected %q, got %q", "pulse", w)
		}
	default:
		t.Fatal("expected a command on the channel")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(hpd.Event{Type: hpd.EventAssert})
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 {
		t.Error("reset should clear recorded events")
	}
	if f.Connected {
		t.Error("reset should clear connected flag")
	}
}
