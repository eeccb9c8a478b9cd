// Package dispatch maps classified button presses onto sequencer commands
// and is the injection point for externally sourced commands (MQTT command
// topic, serial console).
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/hpd-pilot/internal/hpd"
	"github.com/sweeney/hpd-pilot/internal/logic"
)

// Dispatcher forwards commands to a single sequencer. A short press toggles
// the line, a long press requests an EDID re-read pulse.
type Dispatcher struct {
	seq *hpd.Sequencer
}

// New creates a Dispatcher for the given sequencer.
func New(seq *hpd.Sequencer) *Dispatcher {
	return &Dispatcher{seq: seq}
}

// OnPress handles a classified button press.
func (d *Dispatcher) OnPress(kind logic.PressKind, now time.Time) []hpd.Event {
	switch kind {
	case logic.PressShort:
		return d.toggle(now)
	case logic.PressLong:
		return d.seq.Issue(hpd.CommandPulse, now)
	}
	return nil
}

// Inject submits an externally sourced command, bypassing classification.
func (d *Dispatcher) Inject(cmd hpd.Command, now time.Time) []hpd.Event {
	return d.seq.Issue(cmd, now)
}

// InjectText parses a textual command word and submits it. "toggle" is
// resolved here against the sequencer's current state.
func (d *Dispatcher) InjectText(word string, now time.Time) ([]hpd.Event, error) {
	cmd, toggle, err := ParseCommand(word)
	if err != nil {
		return nil, err
	}
	if toggle {
		return d.toggle(now), nil
	}
	return d.seq.Issue(cmd, now), nil
}

func (d *Dispatcher) toggle(now time.Time) []hpd.Event {
	if d.seq.State() == hpd.StateConnected {
		return d.seq.Issue(hpd.CommandDeassert, now)
	}
	return d.seq.Issue(hpd.CommandAssert, now)
}

// ParseCommand maps a command word from a text source to a sequencer
// command. The second return is true for "toggle", which has no direct
// sequencer command and must be resolved by the dispatcher.
func ParseCommand(word string) (hpd.Command, bool, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "assert", "connect":
		return hpd.CommandAssert, false, nil
	case "deassert", "disconnect":
		return hpd.CommandDeassert, false, nil
	case "toggle":
		return "", true, nil
	case "pulse":
		return hpd.CommandPulse, false, nil
	case "reconnect":
		return hpd.CommandReconnect, false, nil
	}
	return "", false, fmt.Errorf("unknown command %q", word)
}
