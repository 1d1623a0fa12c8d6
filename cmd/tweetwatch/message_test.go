// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"strings"
	"testing"

	"tweetwatch/internal/feed"
	"tweetwatch/internal/testutil"
)

func TestBuildSMS(t *testing.T) {
	t.Parallel()

	m := &monitor{handle: "testuser"}
	got := m.buildSMS(feed.Post{
		ID:        "101",
		Text:      "hello world",
		URL:       "https://twitter.com/testuser/status/101",
		CreatedAt: testNow,
	})

	for _, want := range []string{
		"🔔 @testuser",
		"Time: ",
		"hello world",
		"Link: https://twitter.com/testuser/status/101",
		smsFooter,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("SMS body is missing %q:\n%s", want, got)
		}
	}
}

func TestBuildSMSWithoutHandle(t *testing.T) {
	t.Parallel()

	m := new(monitor)
	got := m.buildSMS(feed.Post{Text: "hi", CreatedAt: testNow})
	if !strings.HasPrefix(got, "🔔 New post") {
		t.Fatalf("unexpected header:\n%s", got)
	}
}

func TestBuildSMSTruncates(t *testing.T) {
	t.Parallel()

	m := &monitor{handle: "testuser"}
	got := m.buildSMS(feed.Post{
		ID:        "101",
		Text:      strings.Repeat("го", 1500),
		URL:       "https://twitter.com/testuser/status/101",
		CreatedAt: testNow,
	})

	testutil.AssertEqual(t, runeLen(got), maxSMSLength)
	if !strings.Contains(got, ellipsis) {
		t.Fatal("truncated SMS has no ellipsis")
	}
	// The scaffolding survives truncation intact.
	if !strings.HasSuffix(got, smsFooter) {
		t.Fatalf("truncated SMS lost its footer:\n%s", got)
	}
	if !strings.Contains(got, "Link: https://twitter.com/testuser/status/101") {
		t.Fatalf("truncated SMS lost its link:\n%s", got)
	}
}

func TestBuildSMSShortStaysPut(t *testing.T) {
	t.Parallel()

	m := &monitor{handle: "testuser"}
	got := m.buildSMS(feed.Post{Text: "short", CreatedAt: testNow})
	if strings.Contains(got, ellipsis) {
		t.Fatalf("short SMS should not be truncated:\n%s", got)
	}
}
