// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"crawshaw.dev/jsonfile"
)

// Monitor state, persisted as state.json in the state directory.

type monitorState struct {
	// SubjectID is the resolved ID of the monitored account, cached forever.
	SubjectID string `json:"subject_id,omitempty"`
	// LastPostID is the ID of the most recently delivered post. It advances
	// only after a confirmed delivery, so a crash between fetch and send
	// causes the post to be reconsidered on the next cycle rather than lost.
	LastPostID string `json:"last_post_id,omitempty"`
	// TotalSent counts delivered notifications over the monitor's lifetime.
	TotalSent int64 `json:"total_sent"`
	// DailySent maps a local calendar date ("2006-01-02") to the number of
	// notifications delivered that day.
	DailySent map[string]int `json:"daily_sent,omitempty"`
	// LastVolumeAlertDate is the last date a volume alert was sent, so at
	// most one alert goes out per day.
	LastVolumeAlertDate string `json:"last_volume_alert_date,omitempty"`
	// PauseUntil is an RFC 3339 instant, the literal "indefinite", or empty.
	// PauseUntil and PauseReason are always set and cleared together.
	PauseUntil  string `json:"pause_until,omitempty"`
	PauseReason string `json:"pause_reason,omitempty"`
	// Activity is the per-cycle outcome log, pruned to the last 30 days.
	Activity []activityRecord `json:"activity,omitempty"`
}

type activityRecord struct {
	Time       time.Time `json:"time"`
	Action     string    `json:"action"`
	ItemsFound int       `json:"items_found"`
	ItemsSent  int       `json:"items_sent"`
}

// Activity log actions. Every cycle records exactly one of these.
const (
	actionCheck       = "check"
	actionPaused      = "paused"
	actionRateLimited = "rate_limited_paused"
	actionError       = "error"
)

const (
	stateFile = "state.json"

	activityRetention = 30 * 24 * time.Hour

	dayFormat = "2006-01-02"
)

// openState opens the state file, creating a fresh one when it is missing or
// unreadable. A corrupt state file is never fatal: the monitor degrades to an
// empty state and rebuilds from there.
func (m *monitor) openState() error {
	path := filepath.Join(m.stateDir, stateFile)

	f, err := jsonfile.Load[monitorState](path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.slog.Warn("state file unreadable, starting fresh", "path", path, "error", err)
		if err := os.Remove(path); err != nil {
			return err
		}
		err = fs.ErrNotExist
	}
	if errors.Is(err, fs.ErrNotExist) {
		f, err = jsonfile.New[monitorState](path)
	}
	if err != nil {
		return err
	}
	m.state = f

	if m.dry {
		m.shadow = new(monitorState)
		f.Read(func(s *monitorState) { *m.shadow = s.clone() })
	}
	return nil
}

// readState returns a snapshot of the current state. The snapshot shares the
// map and slice values with the live state and must be treated as read-only;
// all mutation goes through mutateState.
func (m *monitor) readState() monitorState {
	if m.dry {
		return *m.shadow
	}
	var s monitorState
	m.state.Read(func(data *monitorState) { s = *data })
	return s
}

// mutateState applies fn to the state in one atomic write. In dry-run mode
// the mutation happens on an in-memory copy and nothing is persisted.
func (m *monitor) mutateState(fn func(*monitorState)) error {
	if m.dry {
		fn(m.shadow)
		return nil
	}
	return m.state.Write(func(data *monitorState) error {
		fn(data)
		return nil
	})
}

func (s monitorState) clone() monitorState {
	c := s
	c.DailySent = make(map[string]int, len(s.DailySent))
	for k, v := range s.DailySent {
		c.DailySent[k] = v
	}
	c.Activity = slices.Clone(s.Activity)
	return c
}

// logActivity appends the single per-cycle outcome record and prunes
// everything past the retention window.
func (m *monitor) logActivity(action string, found, sent int) {
	now := m.now().UTC()
	if err := m.mutateState(func(s *monitorState) {
		s.Activity = append(s.Activity, activityRecord{
			Time:       now,
			Action:     action,
			ItemsFound: found,
			ItemsSent:  sent,
		})
		s.pruneOld(now)
	}); err != nil {
		m.slog.Warn("failed to record activity", "error", err)
	}
}

func (s *monitorState) pruneOld(now time.Time) {
	cutoff := now.Add(-activityRetention)
	s.Activity = slices.DeleteFunc(s.Activity, func(r activityRecord) bool {
		return r.Time.Before(cutoff)
	})
	for day := range s.DailySent {
		d, err := time.ParseInLocation(dayFormat, day, time.Local)
		if err != nil || d.Before(cutoff) {
			delete(s.DailySent, day)
		}
	}
}
