// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tweetwatch/internal/testutil"
)

func TestSend(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /Accounts/AC123/Messages.json", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		testutil.AssertEqual(t, ok, true)
		testutil.AssertEqual(t, user, "AC123")
		testutil.AssertEqual(t, pass, "secret")

		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, r.PostForm.Get("From"), "+15550001111")
		testutil.AssertEqual(t, r.PostForm.Get("To"), "+15552223333")
		testutil.AssertEqual(t, r.PostForm.Get("Body"), "hello there")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := &Client{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+15550001111",
		To:         "+15552223333",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
	}

	msg, err := c.Send(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, msg.SID, "SM42")
	testutil.AssertEqual(t, msg.Status, "queued")
}

func TestSendFailureScrubsToken(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "authentication failed for secret", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := &Client{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+15550001111",
		To:         "+15552223333",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
		Scrubber:   strings.NewReplacer("secret", "[EXPUNGED]"),
	}

	_, err := c.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("error message %q contains the auth token", err)
	}
}
