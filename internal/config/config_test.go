package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Timing.Poll() != 5*time.Millisecond {
		t.Errorf("poll: got %v", cfg.Timing.Poll())
	}
	if cfg.Timing.Debounce() != 50*time.Millisecond {
		t.Errorf("debounce: got %v", cfg.Timing.Debounce())
	}
	if cfg.Timing.LongPress() != 600*time.Millisecond {
		t.Errorf("long press: got %v", cfg.Timing.LongPress())
	}
	if cfg.Timing.PulseDwell() != 200*time.Millisecond {
		t.Errorf("pulse dwell: got %v", cfg.Timing.PulseDwell())
	}
	if cfg.Timing.ReconnectDwell() != 500*time.Millisecond {
		t.Errorf("reconnect dwell: got %v", cfg.Timing.ReconnectDwell())
	}
	if cfg.Pins.Button != 11 || cfg.Pins.HPD != 20 {
		t.Errorf("pins: got button=%d hpd=%d", cfg.Pins.Button, cfg.Pins.HPD)
	}
	if cfg.MQTT.ClientID != "hpd-pilot" {
		t.Errorf("client id: got %q", cfg.MQTT.ClientID)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hpd-pilot.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
timing:
  poll_ms: 10
  debounce_ms: 40
  long_press_ms: 500
  pulse_dwell_ms: 150
  reconnect_dwell_ms: 800
pins:
  button: 5
  hpd: 6
mqtt:
  broker: tcp://10.0.0.9:1883
serial:
  port: /dev/ttyAMA0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timing.Poll() != 10*time.Millisecond {
		t.Errorf("poll: got %v", cfg.Timing.Poll())
	}
	if cfg.Timing.ReconnectDwell() != 800*time.Millisecond {
		t.Errorf("reconnect dwell: got %v", cfg.Timing.ReconnectDwell())
	}
	if cfg.Pins.Button != 5 || cfg.Pins.HPD != 6 {
		t.Errorf("pins: got button=%d hpd=%d", cfg.Pins.Button, cfg.Pins.HPD)
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.9:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}

	// Unset values fall back to defaults
	if cfg.Timing.MaxBusy() != 2*time.Second {
		t.Errorf("max busy default: got %v", cfg.Timing.MaxBusy())
	}
	if cfg.MQTT.ClientID != "hpd-pilot" {
		t.Errorf("client id default: got %q", cfg.MQTT.ClientID)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("serial baud default: got %d", cfg.Serial.Baud)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "timing: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"poll exceeds debounce", func(c *Config) { c.Timing.PollMs = 100 }, "poll_ms"},
		{"long press within debounce", func(c *Config) { c.Timing.LongPressMs = 50 }, "long_press_ms"},
		{"reconnect shorter than pulse", func(c *Config) { c.Timing.ReconnectDwellMs = 100 }, "reconnect_dwell_ms"},
		{"max busy within reconnect", func(c *Config) { c.Timing.MaxBusyMs = 500 }, "max_busy_ms"},
		{"negative heartbeat", func(c *Config) { c.Timing.HeartbeatMs = -1 }, "heartbeat_ms"},
		{"pin collision", func(c *Config) { c.Pins.Button = 20 }, "pins"},
		{"negative pin", func(c *Config) { c.Pins.HPD = -2 }, "hpd"},
		{"serial without baud", func(c *Config) { c.Serial.Port = "/dev/ttyUSB0"; c.Serial.Baud = -1 }, "baud"},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}
