// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"tweetwatch/internal/cli"
)

// Usage reporting over the activity log.

type usageReport struct {
	PeriodDays  int       `json:"period_days"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalChecks       int     `json:"total_checks"`
	RateLimitedChecks int     `json:"rate_limited_checks"`
	ErrorChecks       int     `json:"error_checks"`
	PausedChecks      int     `json:"paused_checks"`
	SuccessRate       float64 `json:"success_rate"`

	ItemsFound int `json:"items_found"`
	ItemsSent  int `json:"items_sent"`

	DailySent      map[string]int `json:"daily_sent"`
	HighVolumeDays []string       `json:"high_volume_days,omitempty"`

	LastCheck time.Time `json:"last_check"`
}

func buildReport(s monitorState, days int, now time.Time) usageReport {
	r := usageReport{
		PeriodDays:  days,
		GeneratedAt: now,
		DailySent:   make(map[string]int),
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	for _, rec := range s.Activity {
		if rec.Time.Before(cutoff) {
			continue
		}
		r.TotalChecks++
		switch rec.Action {
		case actionRateLimited:
			r.RateLimitedChecks++
		case actionError:
			r.ErrorChecks++
		case actionPaused:
			r.PausedChecks++
		}
		r.ItemsFound += rec.ItemsFound
		r.ItemsSent += rec.ItemsSent
		if rec.Time.After(r.LastCheck) {
			r.LastCheck = rec.Time
		}
	}
	r.SuccessRate = 100 * float64(r.TotalChecks-r.ErrorChecks) / float64(max(1, r.TotalChecks))

	for day, count := range s.DailySent {
		d, err := time.ParseInLocation(dayFormat, day, time.Local)
		if err != nil || d.Add(24*time.Hour).Before(cutoff) {
			continue
		}
		r.DailySent[day] = count
		if count > maxDailySMS {
			r.HighVolumeDays = append(r.HighVolumeDays, day)
		}
	}
	slices.Sort(r.HighVolumeDays)

	return r
}

func (m *monitor) report(periodArg string, w io.Writer) error {
	days, err := strconv.Atoi(periodArg)
	if err != nil || (days != 1 && days != 7 && days != 30) {
		return fmt.Errorf("%w: period must be 1, 7 or 30 (days)", cli.ErrInvalidArgs)
	}

	if err := m.openState(); err != nil {
		return err
	}
	r := buildReport(m.readState(), days, m.now())

	if m.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	periodName := map[int]string{1: "24 hours", 7: "7 days", 30: "30 days"}[days]

	fmt.Fprintf(w, "Usage report, last %s (generated %s)\n", periodName, r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SYSTEM ACTIVITY")
	fmt.Fprintf(w, "  Total checks:  %d\n", r.TotalChecks)
	fmt.Fprintf(w, "  Rate limited:  %d\n", r.RateLimitedChecks)
	fmt.Fprintf(w, "  Errors:        %d\n", r.ErrorChecks)
	fmt.Fprintf(w, "  Paused:        %d\n", r.PausedChecks)
	fmt.Fprintf(w, "  Success rate:  %.1f%%\n", r.SuccessRate)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "POST ACTIVITY")
	fmt.Fprintf(w, "  New posts found:  %d\n", r.ItemsFound)
	fmt.Fprintf(w, "  SMS sent:         %d\n", r.ItemsSent)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DAILY SMS BREAKDOWN")
	if len(r.DailySent) == 0 {
		fmt.Fprintln(w, "  No SMS activity in this period.")
	} else {
		dates := make([]string, 0, len(r.DailySent))
		for day := range r.DailySent {
			dates = append(dates, day)
		}
		slices.Sort(dates)
		slices.Reverse(dates)
		for _, day := range dates {
			fmt.Fprintf(w, "  %s: %d SMS\n", day, r.DailySent[day])
		}
		if len(r.HighVolumeDays) > 0 {
			fmt.Fprintf(w, "  High volume days: %s\n", strings.Join(r.HighVolumeDays, ", "))
		}
	}
	if !r.LastCheck.IsZero() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Last check: %s\n", r.LastCheck.Format("2006-01-02 15:04:05 MST"))
	}

	return nil
}

type statusInfo struct {
	Handle     string `json:"handle,omitempty"`
	SubjectID  string `json:"subject_id,omitempty"`
	LastPostID string `json:"last_post_id,omitempty"`
	TotalSent  int64  `json:"total_sent"`
	SentToday  int    `json:"sent_today"`

	Paused         bool   `json:"paused"`
	PauseReason    string `json:"pause_reason,omitempty"`
	PauseRemaining string `json:"pause_remaining,omitempty"`

	LastVolumeAlertDate string `json:"last_volume_alert_date,omitempty"`
}

func (m *monitor) status(w io.Writer) error {
	if err := m.openState(); err != nil {
		return err
	}
	s := m.readState()
	now := m.now()

	// Read-only view: an expired pause reads as not paused here and is
	// cleaned up by the next run cycle.
	p, _ := decodePause(&s, now)

	info := statusInfo{
		Handle:              m.handle,
		SubjectID:           s.SubjectID,
		LastPostID:          s.LastPostID,
		TotalSent:           s.TotalSent,
		SentToday:           dailyCount(&s, dayKey(now)),
		Paused:              p.active(),
		PauseReason:         p.reason,
		LastVolumeAlertDate: s.LastVolumeAlertDate,
	}
	if p.kind == pauseUntil {
		info.PauseRemaining = p.remaining(now).Round(time.Second).String()
	}
	if p.kind == pauseForever {
		info.PauseRemaining = pauseIndefinite
	}

	if m.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	if info.Handle != "" {
		fmt.Fprintf(w, "Monitoring:    @%s\n", info.Handle)
	}
	if info.SubjectID != "" {
		fmt.Fprintf(w, "Subject ID:    %s\n", info.SubjectID)
	}
	fmt.Fprintf(w, "Last post ID:  %s\n", orNone(info.LastPostID))
	fmt.Fprintf(w, "Total sent:    %d\n", info.TotalSent)
	fmt.Fprintf(w, "Sent today:    %d\n", info.SentToday)
	switch p.kind {
	case pauseNone:
		fmt.Fprintln(w, "Paused:        no")
	case pauseUntil:
		fmt.Fprintf(w, "Paused:        yes, %s remaining (%s)\n", info.PauseRemaining, p.reason)
	case pauseForever:
		fmt.Fprintf(w, "Paused:        yes, indefinitely (%s)\n", p.reason)
	}
	if info.LastVolumeAlertDate != "" {
		fmt.Fprintf(w, "Volume alert:  %s\n", info.LastVolumeAlertDate)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
