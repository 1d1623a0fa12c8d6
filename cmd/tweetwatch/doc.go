// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Tweetwatch polls a single account for new posts and forwards each new post
as an SMS notification.

It is designed to be invoked by an external scheduler (cron and the like):
every invocation runs one poll cycle and exits. State is kept in a JSON file,
so cycles are independent processes. A file lock around the cycle keeps
overlapping invocations from racing on the state file.

# Usage

	$ tweetwatch [flags...] <command> [arguments...]

Commands:

  - run: run one poll cycle and exit.
  - report <1|7|30>: print a usage report for the trailing period, in days.
  - status: print the current monitor status.
  - pause <duration|indefinite> [reason...]: suspend polling and delivery.
  - resume: clear any pause and resume on the next cycle.
  - test-sms: send a test SMS through the delivery channel.

# Environment Variables

The tweetwatch program relies on the following environment variables:

  - TWITTER_USERNAME: handle of the monitored account.
  - TWITTER_BEARER_TOKEN: X API v2 bearer token.
  - TWITTER_USER_ID: optional; skips the one-time handle resolution.
  - FEED_URL: optional; poll this RSS/Atom feed (for example, an RSS bridge
    in front of the account) instead of the X API.
  - TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN: Twilio API credentials.
  - TWILIO_PHONE_NUMBER: the sending phone number.
  - RECIPIENT_PHONE_NUMBER: the receiving phone number.
  - STATE_DIRECTORY: directory for state.json, the run lock and optional
    rules.star. Defaults to $XDG_STATE_HOME/tweetwatch.

# Self-protection

Delivery is capped at 10 SMS per calendar day. When the cap is hit, further
posts that day are dropped and a single volume-alert SMS per day announces
the fact. If the feed reports rate exhaustion, polling pauses for 48 hours.
Posts older than one hour are never delivered, so a long outage does not
flood the recipient on recovery.

# Filter Rules

If rules.star exists in the state directory, it is loaded as a Starlark file
that may define block_rule and keep_rule functions. Each candidate post is
passed to them as a struct with id, text, url and created_at fields; a post
is dropped when block_rule returns True or keep_rule returns False:

	block_rule = lambda post: "giveaway" in post.text.lower()

# Dry Run

With -dry, a cycle logs what it would do, but sends nothing and leaves the
state file untouched.
*/
package main

import (
	_ "embed"

	"tweetwatch/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
