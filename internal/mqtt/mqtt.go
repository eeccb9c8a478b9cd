// Package mqtt provides MQTT publishing and command reception with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/hpd-pilot/internal/hpd"
)

// Topic is the MQTT topic for HPD line events.
const Topic = "av/hdmi/hpd/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "av/hdmi/hpd/system"

// TopicCommand is the MQTT topic the daemon subscribes to for inbound
// commands. Payload is a single command word (assert, deassert, toggle,
// pulse, reconnect).
const TopicCommand = "av/hdmi/hpd/command"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a line event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event hpd.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers command words received on the command topic.
type CommandSource interface {
	Commands() <-chan string
}

// SystemEvent represents a system lifecycle event
// (e.g., startup, shutdown, heartbeat, watchdog fault).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "WATCHDOG_FAULT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for line events.
type Payload struct {
	Hpd HpdPayload `json:"hpd"`
}

// HpdPayload contains the line event details.
type HpdPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Busy      bool   `json:"busy"`
}

// FormatPayload creates the JSON payload for a line event.
func FormatPayload(event hpd.Event) ([]byte, error) {
	payload := Payload{
		Hpd: HpdPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.State),
			Busy:      event.Busy,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status
// snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots). A zero Timestamp is omitted (used for the static LWT payload).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
