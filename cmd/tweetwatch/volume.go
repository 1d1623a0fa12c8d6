// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"time"
)

// Volume governor: per-day delivery caps and the once-per-day volume alert.

const (
	// maxDailySMS is the hard per-day delivery cap. Posts beyond it are
	// dropped for the rest of the day, without pausing the monitor.
	maxDailySMS = 10
	// emergencyDailySMS is the runaway threshold. It is unreachable while
	// maxDailySMS is lower, and exists so that raising the hard cap never
	// removes the backstop: crossing it pauses the monitor for 48 hours.
	emergencyDailySMS = 25
)

func dayKey(t time.Time) string { return t.Format(dayFormat) }

func dailyCount(s *monitorState, day string) int { return s.DailySent[day] }

type volumeDecision int

const (
	volumeAllow volumeDecision = iota
	volumeDeny
	volumeEmergency
)

// authorizeSend decides whether one more notification may go out on day.
func authorizeSend(s *monitorState, day string) volumeDecision {
	n := dailyCount(s, day)
	switch {
	case n >= emergencyDailySMS:
		return volumeEmergency
	case n >= maxDailySMS:
		return volumeDeny
	default:
		return volumeAllow
	}
}

// recordSend bumps the delivery counters for day. It is called inside the
// same state transaction that advances the marker.
func recordSend(s *monitorState, day string) {
	if s.DailySent == nil {
		s.DailySent = make(map[string]int)
	}
	s.DailySent[day]++
	s.TotalSent++
}

// shouldVolumeAlert reports whether an attempted delivery beyond the daily
// cap warrants the administrative alert: the attempt must push the day's
// volume strictly past the cap and no alert may have been sent that day yet.
func shouldVolumeAlert(s *monitorState, day string) bool {
	return dailyCount(s, day)+1 > maxDailySMS && s.LastVolumeAlertDate != day
}

// sendVolumeAlert emits the once-per-day volume alert through the regular
// delivery channel. The alert itself is not counted against the cap.
func (m *monitor) sendVolumeAlert(ctx context.Context, day string) {
	s := m.readState()
	count := dailyCount(&s, day)

	text := fmt.Sprintf(
		"⚠️ tweetwatch volume alert: %d notifications delivered on %s, which is the daily cap. Further posts today will be dropped.",
		count, day,
	)

	if m.dry {
		m.slog.Debug("dry run, not sending volume alert", "day", day)
		return
	}
	if _, err := m.sms.Send(ctx, text); err != nil {
		// The alert is advisory; a failed alert must not abort the cycle,
		// and not recording it means another attempt tomorrow at the latest.
		m.slog.Warn("failed to send volume alert", "error", err)
		return
	}
	if err := m.mutateState(func(s *monitorState) {
		s.LastVolumeAlertDate = day
	}); err != nil {
		m.slog.Warn("failed to record volume alert date", "error", err)
	}
}
