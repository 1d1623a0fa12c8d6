// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"testing"
	"time"

	"tweetwatch/internal/testutil"
)

func TestDecodePause(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		state       monitorState
		wantKind    pauseKind
		wantCleared bool
	}{
		"not paused": {
			state:    monitorState{},
			wantKind: pauseNone,
		},
		"stray reason without pause": {
			state:       monitorState{PauseReason: "leftover"},
			wantKind:    pauseNone,
			wantCleared: true,
		},
		"indefinite": {
			state:    monitorState{PauseUntil: pauseIndefinite, PauseReason: "operator"},
			wantKind: pauseForever,
		},
		"future instant": {
			state: monitorState{
				PauseUntil:  testNow.Add(time.Hour).Format(time.RFC3339),
				PauseReason: reasonRateExhausted,
			},
			wantKind: pauseUntil,
		},
		"expired": {
			state: monitorState{
				PauseUntil:  testNow.Add(-time.Second).Format(time.RFC3339),
				PauseReason: reasonRateExhausted,
			},
			wantKind:    pauseNone,
			wantCleared: true,
		},
		"corrupt timestamp fails open": {
			state:       monitorState{PauseUntil: "not-a-time", PauseReason: "x"},
			wantKind:    pauseNone,
			wantCleared: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p, cleared := decodePause(&tc.state, testNow)
			testutil.AssertEqual(t, p.kind, tc.wantKind)
			testutil.AssertEqual(t, cleared, tc.wantCleared)
			testutil.AssertEqual(t, p.active(), tc.wantKind != pauseNone)
		})
	}
}

func TestPauseRoundTrip(t *testing.T) {
	t.Parallel()

	s := new(monitorState)
	until := testNow.Add(upstreamPauseDuration)
	setPause(s, until, reasonVolumeExceeded)

	p, cleared := decodePause(s, testNow)
	testutil.AssertEqual(t, cleared, false)
	testutil.AssertEqual(t, p.kind, pauseUntil)
	testutil.AssertEqual(t, p.reason, reasonVolumeExceeded)
	testutil.AssertEqual(t, p.remaining(testNow), upstreamPauseDuration)
}

func TestPauseOverwrite(t *testing.T) {
	t.Parallel()

	// Arming a pause while one is active replaces it outright.
	s := new(monitorState)
	setPause(s, testNow.Add(time.Hour), "first")
	setPauseIndefinite(s, "second")

	p, _ := decodePause(s, testNow)
	testutil.AssertEqual(t, p.kind, pauseForever)
	testutil.AssertEqual(t, p.reason, "second")
}

func TestClearPause(t *testing.T) {
	t.Parallel()

	s := new(monitorState)
	setPauseIndefinite(s, "operator")
	clearPause(s)

	testutil.AssertEqual(t, s.PauseUntil, "")
	testutil.AssertEqual(t, s.PauseReason, "")
}

func TestPauseAndResumeCommands(t *testing.T) {
	t.Parallel()

	m := testMonitor(t, testMux(t, nil))

	if err := m.pauseCommand("2h", "deploy window"); err != nil {
		t.Fatal(err)
	}
	s := m.readState()
	testutil.AssertEqual(t, s.PauseUntil, testNow.Add(2*time.Hour).UTC().Format(time.RFC3339))
	testutil.AssertEqual(t, s.PauseReason, "deploy window")

	if err := m.resumeCommand(); err != nil {
		t.Fatal(err)
	}
	s = m.readState()
	testutil.AssertEqual(t, s.PauseUntil, "")
	testutil.AssertEqual(t, s.PauseReason, "")
}

func TestPauseCommandIndefinite(t *testing.T) {
	t.Parallel()

	m := testMonitor(t, testMux(t, nil))

	if err := m.pauseCommand(pauseIndefinite, ""); err != nil {
		t.Fatal(err)
	}
	s := m.readState()
	testutil.AssertEqual(t, s.PauseUntil, pauseIndefinite)
	testutil.AssertEqual(t, s.PauseReason, "paused by operator")
}

func TestPauseCommandBadDuration(t *testing.T) {
	t.Parallel()

	m := testMonitor(t, testMux(t, nil))
	if err := m.pauseCommand("soon", ""); err == nil {
		t.Fatal("expected an error for a bad duration")
	}
}
