// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"fmt"
	"time"

	"tweetwatch/internal/cli"
)

// Pause/backoff control. A pause gates all polling and delivery until it
// expires or is cleared.

// pauseIndefinite is the stored value of pause_until for a pause without an
// end instant. Such a pause never expires on its own and must be cleared with
// the resume command.
const pauseIndefinite = "indefinite"

// upstreamPauseDuration is how long polling stops after the feed reports
// rate exhaustion or after the emergency volume threshold trips.
const upstreamPauseDuration = 48 * time.Hour

const (
	reasonRateExhausted  = "upstream rate exhausted"
	reasonVolumeExceeded = "delivery volume exceeded"
)

type pauseKind int

const (
	pauseNone pauseKind = iota
	pauseUntil
	pauseForever
)

type pauseStatus struct {
	kind   pauseKind
	until  time.Time
	reason string
}

func (p pauseStatus) active() bool { return p.kind != pauseNone }

func (p pauseStatus) remaining(now time.Time) time.Duration {
	if p.kind != pauseUntil {
		return 0
	}
	return p.until.Sub(now)
}

// decodePause interprets the stored pause fields. A concrete pause whose end
// instant has passed, and a pause whose stored timestamp does not parse, both
// decode as not paused with cleared=true, telling the caller to clear the
// stored fields: a broken pause must never wedge the monitor shut.
func decodePause(s *monitorState, now time.Time) (p pauseStatus, cleared bool) {
	if s.PauseUntil == "" {
		return pauseStatus{}, s.PauseReason != ""
	}
	if s.PauseUntil == pauseIndefinite {
		return pauseStatus{kind: pauseForever, reason: s.PauseReason}, false
	}
	until, err := time.Parse(time.RFC3339, s.PauseUntil)
	if err != nil {
		return pauseStatus{}, true
	}
	if !until.After(now) {
		return pauseStatus{}, true
	}
	return pauseStatus{kind: pauseUntil, until: until, reason: s.PauseReason}, false
}

// setPause arms a pause ending at until. Arming while already paused
// overwrites the previous pause.
func setPause(s *monitorState, until time.Time, reason string) {
	s.PauseUntil = until.UTC().Format(time.RFC3339)
	s.PauseReason = reason
}

func setPauseIndefinite(s *monitorState, reason string) {
	s.PauseUntil = pauseIndefinite
	s.PauseReason = reason
}

func clearPause(s *monitorState) {
	s.PauseUntil = ""
	s.PauseReason = ""
}

// pauseGate reports whether the monitor is currently paused, clearing
// expired or corrupt pause state as a side effect.
func (m *monitor) pauseGate(now time.Time) (p pauseStatus, err error) {
	err = m.mutateState(func(s *monitorState) {
		var cleared bool
		p, cleared = decodePause(s, now)
		if cleared {
			m.slog.Info("pause expired", "reason", s.PauseReason)
			clearPause(s)
		}
	})
	return p, err
}

// armPause arms a fixed-duration pause in one state transaction.
func (m *monitor) armPause(d time.Duration, reason string) error {
	until := m.now().Add(d)
	m.slog.Warn("pausing", "until", until, "reason", reason)
	return m.mutateState(func(s *monitorState) {
		setPause(s, until, reason)
	})
}

// pauseCommand is the operator-facing pause: tweetwatch pause <duration|indefinite> [reason...].
func (m *monitor) pauseCommand(arg, reason string) error {
	if reason == "" {
		reason = "paused by operator"
	}
	if err := m.openState(); err != nil {
		return err
	}
	if arg == pauseIndefinite {
		if err := m.mutateState(func(s *monitorState) {
			setPauseIndefinite(s, reason)
		}); err != nil {
			return err
		}
		m.logf("Paused indefinitely. Run 'tweetwatch resume' to resume.")
		return nil
	}
	d, err := time.ParseDuration(arg)
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", cli.ErrInvalidArgs, arg, err)
	}
	if err := m.armPause(d, reason); err != nil {
		return err
	}
	m.logf("Paused until %s.", m.now().Add(d).Format(time.RFC1123))
	return nil
}

func (m *monitor) resumeCommand() error {
	if err := m.openState(); err != nil {
		return err
	}
	var hadPause bool
	if err := m.mutateState(func(s *monitorState) {
		hadPause = s.PauseUntil != ""
		clearPause(s)
	}); err != nil {
		return err
	}
	if hadPause {
		m.logf("Resumed. The next cycle will poll again.")
	} else {
		m.logf("Not paused, nothing to do.")
	}
	return nil
}
