package hpd

import (
	"log"
	"time"
)

// Sequencer owns the HPD line. All mutations go through Issue and Tick,
// both called from the daemon's single serialized loop. Commands arriving
// while a timed sequence is running are dropped and counted: a truncated
// low pulse shorter than the minimum dwell is worse than a missed press.
type Sequencer struct {
	line           Line
	pulseDwell     time.Duration
	reconnectDwell time.Duration
	maxBusy        time.Duration

	state      State
	phase      Phase
	busySince  time.Time
	dwellUntil time.Time
	resume     State // state restored when a pulse completes
	counts     Counts
}

// NewSequencer creates a Sequencer around the given line handle. The line
// starts de-asserted (Disconnected); the caller decides when to issue the
// initial Assert.
func NewSequencer(line Line, pulseDwell, reconnectDwell, maxBusy time.Duration) *Sequencer {
	return &Sequencer{
		line:           line,
		pulseDwell:     pulseDwell,
		reconnectDwell: reconnectDwell,
		maxBusy:        maxBusy,
		state:          StateDisconnected,
		phase:          PhaseIdle,
	}
}

// Issue executes a command. Assert and Deassert take effect immediately and
// are idempotent; Pulse and Reconnect start a timed sequence completed by
// Tick. Returns the events to publish (nil for no-ops and dropped commands).
func (s *Sequencer) Issue(cmd Command, now time.Time) []Event {
	if s.phase != PhaseIdle {
		s.counts.DroppedBusy++
		log.Printf("hpd: %s dropped, %s in progress", cmd, s.phase)
		return nil
	}

	switch cmd {
	case CommandAssert:
		if s.state == StateConnected {
			return nil
		}
		s.setLine(true)
		s.state = StateConnected
		s.counts.Asserts++
		log.Printf("hpd: asserted (connected)")
		return []Event{{Timestamp: now, Type: EventAssert, State: s.state}}

	case CommandDeassert:
		if s.state == StateDisconnected {
			return nil
		}
		s.setLine(false)
		s.state = StateDisconnected
		s.counts.Deasserts++
		log.Printf("hpd: de-asserted (disconnected)")
		return []Event{{Timestamp: now, Type: EventDeassert, State: s.state}}

	case CommandPulse:
		// The dwell runs even from Disconnected so the low time seen by
		// the source is uniform; the prior logical state is restored.
		s.resume = s.state
		s.phase = PhasePulsing
		s.busySince = now
		s.dwellUntil = now.Add(s.pulseDwell)
		s.setLine(false)
		s.state = StateDisconnected
		s.counts.Pulses++
		log.Printf("hpd: pulse started (%v)", s.pulseDwell)
		return []Event{{Timestamp: now, Type: EventPulseStart, State: s.state, Busy: true}}

	case CommandReconnect:
		s.phase = PhaseReconnecting
		s.busySince = now
		s.dwellUntil = now.Add(s.reconnectDwell)
		s.setLine(false)
		s.state = StateDisconnected
		s.counts.Reconnects++
		log.Printf("hpd: reconnect cycle started (%v)", s.reconnectDwell)
		return []Event{{Timestamp: now, Type: EventReconnectStart, State: s.state, Busy: true}}
	}

	log.Printf("hpd: unknown command %q", cmd)
	return nil
}

// Tick advances any in-progress timed sequence. It must be called at the
// poll tick rate; a sequence completes on the first tick at or past its
// dwell boundary. If a sequence has been busy past the MaxBusy bound
// without reaching its boundary (lost or misdelivered timing), the
// watchdog forces the safe state: line low, Disconnected, Idle.
func (s *Sequencer) Tick(now time.Time) []Event {
	if s.phase == PhaseIdle {
		return nil
	}

	if now.Sub(s.busySince) > s.maxBusy {
		s.setLine(false)
		s.state = StateDisconnected
		s.phase = PhaseIdle
		s.counts.Faults++
		log.Printf("hpd: watchdog fired after %v busy, forcing disconnected", now.Sub(s.busySince))
		return []Event{{Timestamp: now, Type: EventWatchdogFault, State: s.state}}
	}

	if now.Before(s.dwellUntil) {
		return nil
	}

	switch s.phase {
	case PhasePulsing:
		s.phase = PhaseIdle
		if s.resume == StateConnected {
			s.setLine(true)
			s.state = StateConnected
		}
		log.Printf("hpd: pulse complete, %s", s.state)
		return []Event{{Timestamp: now, Type: EventPulseEnd, State: s.state}}

	case PhaseReconnecting:
		s.phase = PhaseIdle
		s.setLine(true)
		s.state = StateConnected
		log.Printf("hpd: reconnect cycle complete")
		return []Event{{Timestamp: now, Type: EventReconnectEnd, State: s.state}}
	}

	return nil
}

// State returns the current logical line state.
func (s *Sequencer) State() State {
	return s.state
}

// Phase returns the current sequence phase.
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Busy reports whether a timed sequence is in progress.
func (s *Sequencer) Busy() bool {
	return s.phase != PhaseIdle
}

// CountsSnapshot returns a copy of the activity counters.
func (s *Sequencer) CountsSnapshot() Counts {
	return s.counts
}

// setLine writes the physical level. The line is treated as infallible:
// a write error is logged and the logical state machine proceeds.
func (s *Sequencer) setLine(active bool) {
	if err := s.line.Set(active); err != nil {
		log.Printf("hpd: set line: %v", err)
	}
}
