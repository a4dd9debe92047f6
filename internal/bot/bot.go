// Package bot routes incoming YoPhone updates to registered handlers and
// drives the getUpdates polling loop.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	infralogger "github.com/jonesrussell/yophone-bot/infrastructure/logger"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultErrorBackoff = 5 * time.Second
)

// Update sources reported to the Recorder.
const (
	SourcePoll    = "poll"
	SourceWebhook = "webhook"
)

// Dispatch routes reported to the Recorder.
const (
	RouteCommand   = "command"
	RouteMessage   = "message"
	RouteUnhandled = "unhandled"
)

// HandlerFunc handles one incoming message.
type HandlerFunc func(ctx context.Context, msg yophone.Message) error

// UpdateSource fetches pending updates.
type UpdateSource interface {
	GetUpdates(ctx context.Context) ([]yophone.Update, error)
}

// Recorder observes update traffic.
type Recorder interface {
	UpdatesReceived(source string, count int)
	UpdateDispatched(route string)
	HandlerFailed()
}

type nopRecorder struct{}

func (nopRecorder) UpdatesReceived(string, int) {}
func (nopRecorder) UpdateDispatched(string)     {}
func (nopRecorder) HandlerFailed()              {}

// Bot dispatches updates to message and command handlers.
type Bot struct {
	source   UpdateSource
	logger   infralogger.Logger
	recorder Recorder

	pollInterval time.Duration
	errorBackoff time.Duration

	mu       sync.RWMutex
	messages []HandlerFunc
	commands map[string]HandlerFunc
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(log infralogger.Logger) Option {
	return func(b *Bot) { b.logger = log }
}

// WithRecorder sets the Recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

// WithPollInterval sets the interval used when StartPolling gets zero.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithErrorBackoff sets the wait after a failed polling cycle.
func WithErrorBackoff(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.errorBackoff = d
		}
	}
}

// New creates a Bot reading updates from source.
func New(source UpdateSource, opts ...Option) *Bot {
	b := &Bot{
		source:       source,
		logger:       infralogger.NewNop(),
		recorder:     nopRecorder{},
		pollInterval: defaultPollInterval,
		errorBackoff: defaultErrorBackoff,
		commands:     make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleMessage adds a handler for messages that match no registered command.
func (b *Bot) HandleMessage(h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, h)
}

// HandleCommand registers h for "/name". The leading slash is optional.
// Registering the same command again replaces the previous handler.
func (b *Bot) HandleCommand(name string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[commandKey(name)] = h
}

func commandKey(name string) string {
	return "/" + strings.TrimPrefix(strings.TrimSpace(name), "/")
}

// Dispatch runs the handlers for msg. A registered command runs alone;
// anything else goes to every message handler in registration order.
func (b *Bot) Dispatch(ctx context.Context, msg yophone.Message) {
	b.mu.RLock()
	cmd, isCommand := b.commands[msg.Command()]
	handlers := make([]HandlerFunc, len(b.messages))
	copy(handlers, b.messages)
	b.mu.RUnlock()

	log := b.logger.With(
		infralogger.String("update_id", msg.UpdateID),
		infralogger.String("chat_id", msg.ChatID),
	)

	if isCommand {
		b.recorder.UpdateDispatched(RouteCommand)
		b.run(ctx, log.With(infralogger.String("command", msg.Command())), cmd, msg)
		return
	}

	if len(handlers) == 0 {
		b.recorder.UpdateDispatched(RouteUnhandled)
		log.Debug("No handler for message")
		return
	}

	b.recorder.UpdateDispatched(RouteMessage)
	for _, h := range handlers {
		b.run(ctx, log, h, msg)
	}
}

func (b *Bot) run(ctx context.Context, log infralogger.Logger, h HandlerFunc, msg yophone.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.recorder.HandlerFailed()
			log.Error("Handler panicked", infralogger.Any("panic", r))
		}
	}()

	if err := h(ctx, msg); err != nil {
		b.recorder.HandlerFailed()
		log.Error("Handler failed", infralogger.Error(err))
	}
}

// HandleUpdate parses u and dispatches it. source is SourcePoll or SourceWebhook.
func (b *Bot) HandleUpdate(ctx context.Context, source string, u yophone.Update) {
	b.recorder.UpdatesReceived(source, 1)
	b.Dispatch(ctx, yophone.ParseUpdate(u))
}

// ProcessUpdates fetches pending updates and dispatches each of them.
func (b *Bot) ProcessUpdates(ctx context.Context) error {
	updates, err := b.source.GetUpdates(ctx)
	if err != nil {
		return fmt.Errorf("fetch updates: %w", err)
	}
	if len(updates) == 0 {
		return nil
	}

	b.logger.Debug("Processing updates", infralogger.Int("count", len(updates)))
	for _, u := range updates {
		if ctx.Err() != nil {
			return nil
		}
		b.HandleUpdate(ctx, SourcePoll, u)
	}
	return nil
}

// StartPolling calls ProcessUpdates every interval until ctx is cancelled.
// A zero interval uses the configured poll interval. A failed cycle waits
// the error backoff instead. It returns nil once ctx is done.
func (b *Bot) StartPolling(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = b.pollInterval
	}

	b.logger.Info("Polling started",
		infralogger.Duration("interval", interval),
		infralogger.Duration("error_backoff", b.errorBackoff),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Polling stopped")
			return nil
		case <-timer.C:
		}

		wait := interval
		if err := b.ProcessUpdates(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.logger.Error("Polling cycle failed", infralogger.Error(err))
			wait = b.errorBackoff
		}
		timer.Reset(wait)
	}
}
