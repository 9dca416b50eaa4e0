// Package bot provides the Telegram conversation driver for voxpage. It owns
// the telebot lifecycle, routes inbound updates (commands, uploads, free-text
// replies), and enforces the two-step dialogue per user: stage a file, ask
// for a language, run the document-to-speech pipeline, reset.
//
// Telebot dispatches each update on its own goroutine, so one user's pipeline
// run never blocks another user's dialogue. Per-user state lives in a
// [SessionStore]; everything else is stateless.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"github.com/voxpage/voxpage/internal/lang"
	"github.com/voxpage/voxpage/internal/observe"
	"github.com/voxpage/voxpage/internal/pipeline"
)

const defaultLongPollTimeout = 10 * time.Second

// Speaker runs one document-to-speech conversion. Implemented by
// [pipeline.Runner]; substituted with a double in tests.
type Speaker interface {
	Run(ctx context.Context, filePath string, sel lang.Selection) (*pipeline.Result, error)
}

// Config holds all dependencies for a [Bot].
type Config struct {
	// Token is the Telegram bot API token. Required.
	Token string

	// Pipeline converts staged documents to voice artifacts. Required.
	Pipeline Speaker

	// Catalog is the set of selectable languages. Empty means [lang.Default].
	Catalog lang.Catalog

	// Policy validates uploads before download.
	Policy UploadPolicy

	// Metrics receives driver instrumentation. When nil,
	// [observe.DefaultMetrics] is used.
	Metrics *observe.Metrics

	// TempDir is where uploads are staged. Empty means the OS default.
	TempDir string

	// LongPollTimeout is the Telegram long-poll timeout. Zero means 10 s.
	LongPollTimeout time.Duration
}

// Bot is the Telegram conversation driver.
type Bot struct {
	tb       *tele.Bot
	pipeline Speaker
	sessions *SessionStore
	catalog  lang.Catalog
	policy   UploadPolicy
	metrics  *observe.Metrics
	tempDir  string
}

// New creates a Bot, connects to the Telegram API, and registers all
// handlers. The bot does not poll until [Bot.Run] is called.
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("bot: token must not be empty")
	}
	if cfg.Pipeline == nil {
		return nil, errors.New("bot: pipeline is required")
	}

	catalog := cfg.Catalog
	if len(catalog) == 0 {
		catalog = lang.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	pollTimeout := cfg.LongPollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultLongPollTimeout
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, errors.Join(errors.New("bot: connect to Telegram"), err)
	}

	b := &Bot{
		tb:       tb,
		pipeline: cfg.Pipeline,
		sessions: NewSessionStore(metrics),
		catalog:  catalog,
		policy:   cfg.Policy,
		metrics:  metrics,
		tempDir:  cfg.TempDir,
	}

	tb.Use(middleware.Recover())
	tb.Use(logUpdates)

	tb.Handle("/start", b.onStart)
	tb.Handle("/help", b.onHelp)
	tb.Handle(tele.OnDocument, b.onDocument)
	tb.Handle(tele.OnPhoto, b.onPhoto)
	tb.Handle(tele.OnText, b.onText)

	return b, nil
}

// Run starts long polling and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go b.tb.Start()
	slog.Info("telegram bot polling", "bot", b.tb.Me.Username)

	<-ctx.Done()
	b.tb.Stop()
	return ctx.Err()
}

// logUpdates is a telebot middleware that logs every inbound update.
func logUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if sender := c.Sender(); sender != nil {
			slog.Debug("update received", "user_id", sender.ID, "text_len", len(c.Text()))
		}
		return next(c)
	}
}
