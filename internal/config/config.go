// Package config loads the optional YAML configuration file. Values left
// unset fall back to the built-in defaults; explicitly-set command-line
// flags override file values (that merge lives in cmd). Durations are
// expressed in milliseconds to keep the file format flat.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/hpd-pilot/internal/gpio"
	"github.com/sweeney/hpd-pilot/internal/hpd"
	"github.com/sweeney/hpd-pilot/internal/logic"
)

type Config struct {
	Timing TimingConfig `yaml:"timing"`
	Pins   PinsConfig   `yaml:"pins"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Serial SerialConfig `yaml:"serial"`
}

type TimingConfig struct {
	PollMs           int `yaml:"poll_ms"`
	DebounceMs       int `yaml:"debounce_ms"`
	LongPressMs      int `yaml:"long_press_ms"`
	PulseDwellMs     int `yaml:"pulse_dwell_ms"`
	ReconnectDwellMs int `yaml:"reconnect_dwell_ms"`
	MaxBusyMs        int `yaml:"max_busy_ms"`
	HeartbeatMs      int `yaml:"heartbeat_ms"`
}

type PinsConfig struct {
	Button int `yaml:"button"`
	HPD    int `yaml:"hpd"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Load reads and validates a YAML config file. Missing values are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Duration accessors.

func (t TimingConfig) Poll() time.Duration           { return ms(t.PollMs) }
func (t TimingConfig) Debounce() time.Duration       { return ms(t.DebounceMs) }
func (t TimingConfig) LongPress() time.Duration      { return ms(t.LongPressMs) }
func (t TimingConfig) PulseDwell() time.Duration     { return ms(t.PulseDwellMs) }
func (t TimingConfig) ReconnectDwell() time.Duration { return ms(t.ReconnectDwellMs) }
func (t TimingConfig) MaxBusy() time.Duration        { return ms(t.MaxBusyMs) }
func (t TimingConfig) Heartbeat() time.Duration      { return ms(t.HeartbeatMs) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Built-in defaults. Heartbeat 0 is meaningful (disabled) and therefore
// not defaulted here; the flag default in cmd covers the common case.
const (
	defaultPollMs   = 5
	defaultClientID = "hpd-pilot"
	defaultBroker   = "tcp://192.168.1.200:1883"
	defaultHTTPAddr = ":80"
	defaultBaud     = 115200
)

var (
	defaultDebounceMs       = int(logic.DefaultDebounce / time.Millisecond)
	defaultLongPressMs      = int(logic.DefaultLongPress / time.Millisecond)
	defaultPulseDwellMs     = int(hpd.DefaultPulseDwell / time.Millisecond)
	defaultReconnectDwellMs = int(hpd.DefaultReconnectDwell / time.Millisecond)
	defaultMaxBusyMs        = int(hpd.DefaultMaxBusy / time.Millisecond)
)

// normalize fills unset fields with defaults.
func (c *Config) normalize() {
	if c.Timing.PollMs == 0 {
		c.Timing.PollMs = defaultPollMs
	}
	if c.Timing.DebounceMs == 0 {
		c.Timing.DebounceMs = defaultDebounceMs
	}
	if c.Timing.LongPressMs == 0 {
		c.Timing.LongPressMs = defaultLongPressMs
	}
	if c.Timing.PulseDwellMs == 0 {
		c.Timing.PulseDwellMs = defaultPulseDwellMs
	}
	if c.Timing.ReconnectDwellMs == 0 {
		c.Timing.ReconnectDwellMs = defaultReconnectDwellMs
	}
	if c.Timing.MaxBusyMs == 0 {
		c.Timing.MaxBusyMs = defaultMaxBusyMs
	}
	if c.Pins.Button == 0 {
		c.Pins.Button = gpio.DefaultPinButton
	}
	if c.Pins.HPD == 0 {
		c.Pins.HPD = gpio.DefaultPinHPD
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = defaultBroker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = defaultClientID
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.Serial.Port != "" && c.Serial.Baud == 0 {
		c.Serial.Baud = defaultBaud
	}
}
