// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tweetwatch/internal/feed"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// Operator filter rules, loaded from rules.star in the state directory.
//
// The file may define block_rule and keep_rule functions. Both take a post
// struct; a post is dropped when block_rule returns True or keep_rule
// returns False.

const rulesFile = "rules.star"

type rules struct {
	block *starlark.Function
	keep  *starlark.Function
}

// loadRules parses the rules file if one exists. A missing file means no
// rules; a broken file is an error, because silently ignoring it would
// deliver posts the operator asked to suppress.
func (m *monitor) loadRules() error {
	path := filepath.Join(m.stateDir, rulesFile)
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	globals, err := starlark.ExecFileOptions(
		&syntax.FileOptions{
			TopLevelControl: true,
		},
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { m.logf("%s", msg) },
		},
		rulesFile,
		src,
		nil,
	)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", rulesFile, err)
	}

	r := new(rules)
	for name, fn := range map[string]**starlark.Function{
		"block_rule": &r.block,
		"keep_rule":  &r.keep,
	} {
		v, ok := globals[name]
		if !ok {
			continue
		}
		f, ok := v.(*starlark.Function)
		if !ok {
			return fmt.Errorf("parsing %s: %s must be a function", rulesFile, name)
		}
		*fn = f
	}
	if r.block == nil && r.keep == nil {
		return nil
	}
	m.rules = r
	return nil
}

// blocked reports whether the rules drop the post. Rule evaluation errors
// keep the post: a broken rule must not suppress notifications.
func (r *rules) blocked(p feed.Post, slog *slog.Logger) bool {
	if r.block != nil {
		if v, ok := applyRule(r.block, p, slog); ok && v {
			return true
		}
	}
	if r.keep != nil {
		if v, ok := applyRule(r.keep, p, slog); ok && !v {
			return true
		}
	}
	return false
}

func applyRule(rule *starlark.Function, p feed.Post, slog *slog.Logger) (result, ok bool) {
	val, err := starlark.Call(
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { slog.Info(msg) },
		},
		rule,
		starlark.Tuple{starlarkstruct.FromStringDict(
			starlarkstruct.Default,
			starlark.StringDict{
				"id":         starlark.String(p.ID),
				"text":       starlark.String(p.Text),
				"url":        starlark.String(p.URL),
				"created_at": starlark.String(p.CreatedAt.Format(time.RFC3339)),
			},
		)},
		nil,
	)
	if err != nil {
		slog.Warn("applying rule for post", "id", p.ID, "error", err)
		return false, false
	}

	ret, isBool := val.(starlark.Bool)
	if !isBool {
		slog.Warn("rule returned non-boolean value", "id", p.ID)
		return false, false
	}
	return bool(ret), true
}
