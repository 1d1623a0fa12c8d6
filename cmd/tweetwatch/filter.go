// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"time"

	"tweetwatch/internal/feed"
)

// Dedup and freshness filtering of fetched batches.

// maxPostAge is the hard safety bound on post age. Posts older than this are
// silently skipped, never delivered and never retried: after a cold start or
// a long pause, the backlog ages out of relevance instead of flooding the
// recipient. A post exactly maxPostAge old is still delivered.
const maxPostAge = time.Hour

// freshPosts narrows a newest-first batch down to the work list for this
// cycle: reversed to oldest-first so delivery order matches creation order,
// minus the marker post itself (in case the feed returns the boundary item
// again) and minus anything older than maxPostAge.
func freshPosts(batch []feed.Post, lastID string, now time.Time) []feed.Post {
	work := make([]feed.Post, 0, len(batch))
	for i := len(batch) - 1; i >= 0; i-- {
		p := batch[i]
		if lastID != "" && p.ID == lastID {
			continue
		}
		if now.Sub(p.CreatedAt) > maxPostAge {
			continue
		}
		work = append(work, p)
	}
	return work
}

// selectPosts applies the static filters, then the optional operator rules.
func (m *monitor) selectPosts(batch []feed.Post, lastID string, now time.Time) []feed.Post {
	work := freshPosts(batch, lastID, now)

	if m.rules == nil {
		return work
	}
	kept := work[:0]
	for _, p := range work {
		if m.rules.blocked(p, m.slog) {
			m.slog.Debug("post dropped by rules", "id", p.ID)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
