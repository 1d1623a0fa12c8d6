// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"testing"
	"time"

	"tweetwatch/internal/feed"
	"tweetwatch/internal/testutil"
)

func TestFreshPosts(t *testing.T) {
	t.Parallel()

	// Batches arrive newest first; the work list comes out oldest first.
	batch := []feed.Post{
		{ID: "104", CreatedAt: testNow.Add(-time.Minute)},
		{ID: "103", CreatedAt: testNow.Add(-30 * time.Minute)},
		{ID: "102", CreatedAt: testNow.Add(-45 * time.Minute)},
	}

	got := freshPosts(batch, "", testNow)
	testutil.AssertEqual(t, ids(got), []string{"102", "103", "104"})
}

func TestFreshPostsSkipsMarker(t *testing.T) {
	t.Parallel()

	batch := []feed.Post{
		{ID: "104", CreatedAt: testNow.Add(-time.Minute)},
		{ID: "103", CreatedAt: testNow.Add(-2 * time.Minute)},
	}

	got := freshPosts(batch, "103", testNow)
	testutil.AssertEqual(t, ids(got), []string{"104"})
}

func TestFreshPostsAgeBound(t *testing.T) {
	t.Parallel()

	batch := []feed.Post{
		{ID: "fresh", CreatedAt: testNow.Add(-time.Minute)},
		{ID: "boundary", CreatedAt: testNow.Add(-maxPostAge)},
		{ID: "stale", CreatedAt: testNow.Add(-maxPostAge - time.Second)},
	}

	// A post exactly at the bound is still delivered; one second past it
	// is not.
	got := freshPosts(batch, "", testNow)
	testutil.AssertEqual(t, ids(got), []string{"boundary", "fresh"})
}

func TestFreshPostsEmptyBatch(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, len(freshPosts(nil, "101", testNow)), 0)
}

func ids(posts []feed.Post) []string {
	s := make([]string, 0, len(posts))
	for _, p := range posts {
		s = append(s, p.ID)
	}
	return s
}
