// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package feed defines the types for fetching recent posts of a monitored
// account, independent of where the posts come from.
package feed

import (
	"context"
	"errors"
	"time"
)

// ErrRateExhausted is returned by [Source.RecentPosts] when the upstream
// reports that its rate or quota is exhausted. Callers are expected to back
// off instead of retrying.
var ErrRateExhausted = errors.New("feed: rate exhausted")

// Post is a single post of the monitored account.
type Post struct {
	ID        string
	Text      string
	URL       string
	CreatedAt time.Time
}

// Source fetches posts of a single account.
type Source interface {
	// ResolveSubject resolves an account handle into an opaque subject ID.
	// The result is expected to be cached by the caller.
	ResolveSubject(ctx context.Context, handle string) (string, error)

	// RecentPosts returns recent posts of the subject, newest first,
	// excluding the post with ID sinceID and everything older than it.
	// An empty sinceID returns the most recent posts without a lower bound.
	RecentPosts(ctx context.Context, subjectID, sinceID string) ([]Post, error)
}
