// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tweetwatch/internal/feed"
	"tweetwatch/internal/testutil"
)

func testClient(t *testing.T, mux *http.ServeMux) *Client {
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &Client{
		Token:      "test-token",
		Handle:     "somereporter",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
	}
}

func TestResolveSubject(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/by/username/somereporter", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("Authorization"), "Bearer test-token")
		w.Write([]byte(`{"data":{"id":"178580925","username":"somereporter"}}`))
	})
	c := testClient(t, mux)

	id, err := c.ResolveSubject(context.Background(), "somereporter")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, id, "178580925")
}

func TestResolveSubjectNotFound(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/by/username/nobody", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"title":"Not Found Error"}]}`))
	})
	c := testClient(t, mux)

	if _, err := c.ResolveSubject(context.Background(), "nobody"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRecentPosts(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/178580925/tweets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		testutil.AssertEqual(t, q.Get("since_id"), "100")
		testutil.AssertEqual(t, q.Get("max_results"), "10")
		testutil.AssertEqual(t, q.Get("exclude"), "retweets,replies")
		w.Write([]byte(`{"data":[
			{"id":"102","text":"newer","created_at":"2026-08-30T12:05:00Z"},
			{"id":"101","text":"older","created_at":"2026-08-30T12:00:00Z"}
		]}`))
	})
	c := testClient(t, mux)

	posts, err := c.RecentPosts(context.Background(), "178580925", "100")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, posts, []feed.Post{
		{
			ID:        "102",
			Text:      "newer",
			URL:       "https://twitter.com/somereporter/status/102",
			CreatedAt: time.Date(2026, 8, 30, 12, 5, 0, 0, time.UTC),
		},
		{
			ID:        "101",
			Text:      "older",
			URL:       "https://twitter.com/somereporter/status/101",
			CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	})
}

func TestRecentPostsEmpty(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/178580925/tweets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})
	c := testClient(t, mux)

	posts, err := c.RecentPosts(context.Background(), "178580925", "")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(posts), 0)
}

func TestRecentPostsRateExhausted(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/178580925/tweets", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Too Many Requests"}`, http.StatusTooManyRequests)
	})
	c := testClient(t, mux)

	_, err := c.RecentPosts(context.Background(), "178580925", "")
	if !errors.Is(err, feed.ErrRateExhausted) {
		t.Fatalf("got error %v, want feed.ErrRateExhausted", err)
	}
}
