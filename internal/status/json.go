package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	HPD           string       `json:"hpd"`
	Phase         string       `json:"phase"`
	Busy          bool         `json:"busy"`
	Ready         bool         `json:"ready"`
	ButtonPressed bool         `json:"button_pressed"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of sequencer activity counters.
type CountsJSON struct {
	Asserts     int `json:"asserts"`
	Deasserts   int `json:"deasserts"`
	Pulses      int `json:"pulses"`
	Reconnects  int `json:"reconnects"`
	DroppedBusy int `json:"dropped_busy"`
	Faults      int `json:"faults"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	LongPressMs      int64  `json:"long_press_ms"`
	PulseDwellMs     int64  `json:"pulse_dwell_ms"`
	ReconnectDwellMs int64  `json:"reconnect_dwell_ms"`
	MaxBusyMs        int64  `json:"max_busy_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
	SerialPort       string `json:"serial_port,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	line := string(snap.Line)
	if line == "" {
		line = "UNKNOWN"
	}
	phase := string(snap.Phase)
	if phase == "" {
		phase = "IDLE"
	}

	return StatusInner{
		HPD:           line,
		Phase:         phase,
		Busy:          snap.Busy,
		Ready:         snap.Baselined,
		ButtonPressed: snap.Pressed,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Asserts:     snap.Counts.Asserts,
			Deasserts:   snap.Counts.Deasserts,
			Pulses:      snap.Counts.Pulses,
			Reconnects:  snap.Counts.Reconnects,
			DroppedBusy: snap.Counts.DroppedBusy,
			Faults:      snap.Counts.Faults,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			LongPressMs:      snap.Config.LongPressMs,
			PulseDwellMs:     snap.Config.PulseDwellMs,
			ReconnectDwellMs: snap.Config.ReconnectDwellMs,
			MaxBusyMs:        snap.Config.MaxBusyMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			SerialPort:       snap.Config.SerialPort,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
