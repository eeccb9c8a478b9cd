package config

import "fmt"

// Validate checks the timing relationships the pipeline depends on. The
// poll tick must be able to resolve the debounce window, a long press must
// outlast the debounce, and the reconnect dwell must hold the line low at
// least as long as a pulse would.
func (c *Config) Validate() error {
	t := c.Timing

	if t.PollMs <= 0 {
		return fmt.Errorf("timing: poll_ms must be positive, got %d", t.PollMs)
	}
	if t.DebounceMs <= 0 {
		return fmt.Errorf("timing: debounce_ms must be positive, got %d", t.DebounceMs)
	}
	if t.PollMs > t.DebounceMs {
		return fmt.Errorf("timing: poll_ms (%d) must not exceed debounce_ms (%d)", t.PollMs, t.DebounceMs)
	}
	if t.LongPressMs <= t.DebounceMs {
		return fmt.Errorf("timing: long_press_ms (%d) must exceed debounce_ms (%d)", t.LongPressMs, t.DebounceMs)
	}
	if t.PulseDwellMs <= 0 {
		return fmt.Errorf("timing: pulse_dwell_ms must be positive, got %d", t.PulseDwellMs)
	}
	if t.ReconnectDwellMs < t.PulseDwellMs {
		return fmt.Errorf("timing: reconnect_dwell_ms (%d) must be >= pulse_dwell_ms (%d)", t.ReconnectDwellMs, t.PulseDwellMs)
	}
	if t.MaxBusyMs <= t.ReconnectDwellMs {
		return fmt.Errorf("timing: max_busy_ms (%d) must exceed reconnect_dwell_ms (%d)", t.MaxBusyMs, t.ReconnectDwellMs)
	}
	if t.HeartbeatMs < 0 {
		return fmt.Errorf("timing: heartbeat_ms must not be negative, got %d", t.HeartbeatMs)
	}

	if c.Pins.Button < 0 {
		return fmt.Errorf("pins: button must not be negative, got %d", c.Pins.Button)
	}
	if c.Pins.HPD < 0 {
		return fmt.Errorf("pins: hpd must not be negative, got %d", c.Pins.HPD)
	}
	if c.Pins.Button == c.Pins.HPD {
		return fmt.Errorf("pins: button and hpd both set to %d", c.Pins.Button)
	}

	if c.Serial.Port != "" && c.Serial.Baud <= 0 {
		return fmt.Errorf("serial: baud must be positive, got %d", c.Serial.Baud)
	}

	return nil
}
