// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"testing"

	"tweetwatch/internal/testutil"
)

func TestAuthorizeSend(t *testing.T) {
	t.Parallel()

	day := dayKey(testNow)
	cases := map[string]struct {
		sent int
		want volumeDecision
	}{
		"first of the day":   {sent: 0, want: volumeAllow},
		"just under the cap": {sent: maxDailySMS - 1, want: volumeAllow},
		"at the cap":         {sent: maxDailySMS, want: volumeDeny},
		"over the cap":       {sent: maxDailySMS + 5, want: volumeDeny},
		"emergency":          {sent: emergencyDailySMS, want: volumeEmergency},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := &monitorState{DailySent: map[string]int{day: tc.sent}}
			testutil.AssertEqual(t, authorizeSend(s, day), tc.want)
		})
	}
}

func TestAuthorizeSendCountsPerDay(t *testing.T) {
	t.Parallel()

	// Yesterday's volume does not gate today.
	s := &monitorState{DailySent: map[string]int{"2026-08-29": maxDailySMS}}
	testutil.AssertEqual(t, authorizeSend(s, "2026-08-30"), volumeAllow)
}

func TestRecordSend(t *testing.T) {
	t.Parallel()

	s := new(monitorState)
	recordSend(s, "2026-08-30")
	recordSend(s, "2026-08-30")
	recordSend(s, "2026-08-31")

	testutil.AssertEqual(t, s.DailySent["2026-08-30"], 2)
	testutil.AssertEqual(t, s.DailySent["2026-08-31"], 1)
	testutil.AssertEqual(t, s.TotalSent, int64(3))
}

func TestShouldVolumeAlert(t *testing.T) {
	t.Parallel()

	const day = "2026-08-30"
	cases := map[string]struct {
		state monitorState
		want  bool
	}{
		"below the cap": {
			state: monitorState{DailySent: map[string]int{day: maxDailySMS - 1}},
			want:  false,
		},
		"attempt past the cap": {
			state: monitorState{DailySent: map[string]int{day: maxDailySMS}},
			want:  true,
		},
		"already alerted today": {
			state: monitorState{
				DailySent:           map[string]int{day: maxDailySMS},
				LastVolumeAlertDate: day,
			},
			want: false,
		},
		"alerted yesterday": {
			state: monitorState{
				DailySent:           map[string]int{day: maxDailySMS},
				LastVolumeAlertDate: "2026-08-29",
			},
			want: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, shouldVolumeAlert(&tc.state, day), tc.want)
		})
	}
}
