// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tweetwatch/internal/feed"
	"tweetwatch/internal/filelock"
)

// The poll cycle: one invocation, one pass through
// lock → load → pause gate → fetch → filter → authorize → deliver → record.

const runLockFile = "tweetwatch.lock"

func (m *monitor) runCycle(ctx context.Context) error {
	// The whole load-mutate-save sequence runs under an exclusive lock, so
	// overlapping scheduler invocations cannot race on the state file.
	lock, err := filelock.Acquire(filepath.Join(m.stateDir, runLockFile), strconv.Itoa(os.Getpid())+"\n")
	if errors.Is(err, filelock.ErrAlreadyLocked) {
		return errAlreadyRunning
	}
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := m.openState(); err != nil {
		return err
	}
	if err := m.loadRules(); err != nil {
		return err
	}

	now := m.now()

	p, err := m.pauseGate(now)
	if err != nil {
		return err
	}
	if p.active() {
		m.slog.Info("paused, skipping cycle", "reason", p.reason)
		m.logActivity(actionPaused, 0, 0)
		return nil
	}

	lastID := m.readState().LastPostID

	batch, err := m.fetchBatch(ctx, lastID)
	if errors.Is(err, feed.ErrRateExhausted) {
		m.slog.Warn("upstream rate exhausted, backing off", "error", err)
		if err := m.armPause(upstreamPauseDuration, reasonRateExhausted); err != nil {
			return err
		}
		m.logActivity(actionRateLimited, 0, 0)
		return nil
	}
	if err != nil {
		m.logActivity(actionError, 0, 0)
		return err
	}

	work := m.selectPosts(batch, lastID, now)
	m.slog.Debug("checked for new posts", "batch", len(batch), "new", len(work))

	delivered := 0
itemLoop:
	for _, post := range work {
		day := dayKey(m.now())
		s := m.readState()
		switch authorizeSend(&s, day) {
		case volumeDeny:
			m.slog.Warn("daily delivery cap reached, dropping remaining posts",
				"day", day,
				"count", dailyCount(&s, day),
				"cap", maxDailySMS,
			)
			if shouldVolumeAlert(&s, day) {
				m.sendVolumeAlert(ctx, day)
			}
			break itemLoop
		case volumeEmergency:
			m.slog.Error("runaway delivery volume, pausing",
				"day", day,
				"count", dailyCount(&s, day),
			)
			if err := m.armPause(upstreamPauseDuration, reasonVolumeExceeded); err != nil {
				return err
			}
			break itemLoop
		}

		ok, err := m.deliver(ctx, post, day)
		if err != nil {
			m.logActivity(actionError, len(work), delivered)
			return err
		}
		if ok {
			delivered++
		}
	}

	m.logActivity(actionCheck, len(work), delivered)
	return nil
}

// fetchBatch resolves the subject (once, cached in state) and fetches its
// recent posts, newest first.
func (m *monitor) fetchBatch(ctx context.Context, lastID string) ([]feed.Post, error) {
	subjectID, err := m.subject(ctx)
	if err != nil {
		return nil, err
	}
	batch, err := m.posts.RecentPosts(ctx, subjectID, lastID)
	if err != nil {
		return nil, fmt.Errorf("checking for new posts: %w", err)
	}
	return batch, nil
}

func (m *monitor) subject(ctx context.Context) (string, error) {
	if m.userID != "" {
		return m.userID, nil
	}
	if s := m.readState(); s.SubjectID != "" {
		return s.SubjectID, nil
	}
	id, err := m.posts.ResolveSubject(ctx, m.handle)
	if err != nil {
		return "", fmt.Errorf("resolving subject %q: %w", m.handle, err)
	}
	m.slog.Info("resolved subject", "handle", m.handle, "id", id)
	if err := m.mutateState(func(s *monitorState) { s.SubjectID = id }); err != nil {
		return "", err
	}
	return id, nil
}

// deliver sends one post. On success the marker advance, the counter bumps
// and nothing else happen in a single state transaction, so a crash can
// never mark a post delivered without it having been sent. A failed send is
// not fatal: the post is skipped and, marker unmoved, retried next cycle as
// long as it stays fresh.
func (m *monitor) deliver(ctx context.Context, post feed.Post, day string) (bool, error) {
	body := m.buildSMS(post)

	if m.dry {
		m.slog.Debug("dry run, not sending", "id", post.ID, "body", body)
		m.mutateState(func(s *monitorState) {
			s.LastPostID = post.ID
			recordSend(s, day)
		})
		return true, nil
	}

	receipt, err := m.sms.Send(ctx, body)
	if err != nil {
		m.slog.Warn("failed to send SMS", "id", post.ID, "error", err)
		return false, nil
	}
	m.slog.Info("sent SMS", "id", post.ID, "sid", receipt.SID)

	if err := m.mutateState(func(s *monitorState) {
		s.LastPostID = post.ID
		recordSend(s, day)
	}); err != nil {
		return false, fmt.Errorf("persisting delivery of post %s: %w", post.ID, err)
	}
	return true, nil
}
