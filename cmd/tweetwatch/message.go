// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"strings"

	"tweetwatch/internal/feed"
)

// SMS formatting.

const (
	// maxSMSLength is the concatenated-SMS budget. A single message may not
	// exceed it, counted in characters.
	maxSMSLength = 1600

	// smsFooter is appended to every notification. Its room in the budget
	// is reserved before the post text is truncated.
	smsFooter = "Reply STOP to stop."

	ellipsis = "…"
)

// buildSMS renders a post as an SMS body within the maxSMSLength budget.
// When the post text does not fit, it is truncated with a trailing ellipsis;
// the scaffolding around it (header, timestamp, link, footer) is never cut.
func (m *monitor) buildSMS(p feed.Post) string {
	header := "🔔 New post"
	if m.handle != "" {
		header = "🔔 @" + m.handle
	}

	render := func(text string) string {
		parts := []string{
			header,
			"Time: " + p.CreatedAt.Local().Format("01/02/06 3:04PM"),
			"",
			text,
			"",
			"Link: " + p.URL,
			"",
			smsFooter,
		}
		return strings.Join(parts, "\n")
	}

	full := render(p.Text)
	if runeLen(full) <= maxSMSLength {
		return full
	}

	overhead := runeLen(full) - runeLen(p.Text)
	budget := maxSMSLength - overhead - runeLen(ellipsis)
	if budget < 0 {
		budget = 0
	}
	return render(truncate(p.Text, budget) + ellipsis)
}

func runeLen(s string) int { return len([]rune(s)) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
