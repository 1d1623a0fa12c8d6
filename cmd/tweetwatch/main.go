// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"crawshaw.dev/jsonfile"

	"tweetwatch/internal/api/twilio"
	"tweetwatch/internal/api/twitter"
	"tweetwatch/internal/cli"
	"tweetwatch/internal/feed"
	"tweetwatch/internal/logger"
	"tweetwatch/internal/request"
)

// Some types of errors that can happen during tweetwatch execution.
var (
	errAlreadyRunning = errors.New("already running")
)

func main() { cli.Main(new(monitor)) }

func (m *monitor) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&m.dry, "dry", false, "Enable dry-run mode: log actions, but don't send SMS or save state.")
	fs.BoolVar(&m.json, "json", false, "Output in JSON format (honored in supported commands).")
}

type monitor struct {
	init sync.Once

	// configuration
	handle      string
	bearerToken string
	userID      string
	feedURL     string
	accountSID  string
	authToken   string
	fromNumber  string
	toNumber    string
	stateDir    string
	dry         bool
	json        bool

	// now acts as time.Now, but can be mocked for testing.
	now func() time.Time

	// initialized by doInit
	httpc     *http.Client
	logf      logger.Logf
	slog      *slog.Logger
	slogLevel *slog.LevelVar
	scrubber  *strings.Replacer
	posts     feed.Source
	sms       smsSender
	rules     *rules

	// opened by openState
	state *jsonfile.JSONFile[monitorState]
	// shadow carries state mutations in dry-run mode so the cycle logic
	// works without touching the state file.
	shadow *monitorState
}

// smsSender is the delivery channel. *twilio.Client implements it.
type smsSender interface {
	Send(ctx context.Context, body string) (*twilio.Message, error)
}

func (m *monitor) Run(ctx context.Context, env *cli.Env) error {
	// Load configuration from environment variables.
	m.handle = cmp.Or(m.handle, env.Getenv("TWITTER_USERNAME"))
	m.bearerToken = cmp.Or(m.bearerToken, env.Getenv("TWITTER_BEARER_TOKEN"))
	m.userID = cmp.Or(m.userID, env.Getenv("TWITTER_USER_ID"))
	m.feedURL = cmp.Or(m.feedURL, env.Getenv("FEED_URL"))
	m.accountSID = cmp.Or(m.accountSID, env.Getenv("TWILIO_ACCOUNT_SID"))
	m.authToken = cmp.Or(m.authToken, env.Getenv("TWILIO_AUTH_TOKEN"))
	m.fromNumber = cmp.Or(m.fromNumber, env.Getenv("TWILIO_PHONE_NUMBER"))
	m.toNumber = cmp.Or(m.toNumber, env.Getenv("RECIPIENT_PHONE_NUMBER"))
	m.stateDir = cmp.Or(m.stateDir, env.Getenv("STATE_DIRECTORY"))
	if m.stateDir == "" {
		xdgStateHome := env.Getenv("XDG_STATE_HOME")
		if xdgStateHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			xdgStateHome = filepath.Join(home, ".local", "state")
		}
		m.stateDir = filepath.Join(xdgStateHome, "tweetwatch")
	}
	if err := os.MkdirAll(m.stateDir, 0o700); err != nil {
		return err
	}

	// Initialize internal state.
	m.init.Do(func() {
		m.doInit(env)
	})

	// Enable debug logging in dry-run mode.
	if m.dry {
		m.slogLevel.Set(slog.LevelDebug)
	}

	if len(env.Args) == 0 {
		return fmt.Errorf("%w: command is required, see -help for usage", cli.ErrInvalidArgs)
	}
	command := env.Args[0]

	switch command {
	case "run":
		if err := m.checkCredentials(true); err != nil {
			return err
		}
		return m.runCycle(ctx)
	case "report":
		if len(env.Args) != 2 {
			return fmt.Errorf("%w: report command expects a period (1, 7 or 30)", cli.ErrInvalidArgs)
		}
		return m.report(env.Args[1], env.Stdout)
	case "status":
		return m.status(env.Stdout)
	case "pause":
		if len(env.Args) < 2 {
			return fmt.Errorf("%w: pause command expects a duration or 'indefinite'", cli.ErrInvalidArgs)
		}
		return m.pauseCommand(env.Args[1], strings.Join(env.Args[2:], " "))
	case "resume":
		return m.resumeCommand()
	case "test-sms":
		if err := m.checkCredentials(false); err != nil {
			return err
		}
		return m.testSMS(ctx)
	default:
		return fmt.Errorf("%w: no such command %q", cli.ErrInvalidArgs, command)
	}
}

func (m *monitor) doInit(env *cli.Env) {
	m.logf = log.New(env.Stderr, "", 0).Printf
	if m.now == nil {
		m.now = time.Now
	}

	if m.httpc == nil {
		m.httpc = request.DefaultClient
	}

	var secrets []string
	for _, s := range []string{m.bearerToken, m.authToken} {
		if s != "" {
			secrets = append(secrets, s, "[EXPUNGED]")
		}
	}
	if len(secrets) > 0 {
		m.scrubber = strings.NewReplacer(secrets...)
	}

	m.slogLevel = new(slog.LevelVar)
	m.slog = slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{
		Level: m.slogLevel,
	}))

	if m.posts == nil {
		if m.feedURL != "" {
			m.posts = feed.NewRSS(m.feedURL, m.httpc)
		} else {
			m.posts = &twitter.Client{
				Token:      m.bearerToken,
				Handle:     m.handle,
				HTTPClient: m.httpc,
				Scrubber:   m.scrubber,
			}
		}
	}
	if m.sms == nil {
		m.sms = &twilio.Client{
			AccountSID: m.accountSID,
			AuthToken:  m.authToken,
			From:       m.fromNumber,
			To:         m.toNumber,
			HTTPClient: m.httpc,
			Scrubber:   m.scrubber,
		}
	}
}

// checkCredentials verifies that every required environment variable is set,
// reporting all missing ones at once. It runs before any state is touched.
func (m *monitor) checkCredentials(needFeed bool) error {
	var missing []string
	if m.accountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if m.authToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if m.fromNumber == "" {
		missing = append(missing, "TWILIO_PHONE_NUMBER")
	}
	if m.toNumber == "" {
		missing = append(missing, "RECIPIENT_PHONE_NUMBER")
	}
	if needFeed && m.feedURL == "" {
		if m.bearerToken == "" {
			missing = append(missing, "TWITTER_BEARER_TOKEN")
		}
		if m.handle == "" && m.userID == "" {
			missing = append(missing, "TWITTER_USERNAME")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (m *monitor) testSMS(ctx context.Context) error {
	const testMessage = "🧪 tweetwatch test: your monitoring setup is working."
	if m.dry {
		m.slog.Debug("dry run, not sending test SMS")
		return nil
	}
	msg, err := m.sms.Send(ctx, testMessage)
	if err != nil {
		return err
	}
	m.logf("Test SMS sent, SID %s.", msg.SID)
	return nil
}
