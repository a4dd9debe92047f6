package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	infragin "github.com/jonesrussell/yophone-bot/infrastructure/gin"
	"github.com/jonesrussell/yophone-bot/infrastructure/logger"
	inframetrics "github.com/jonesrussell/yophone-bot/infrastructure/metrics"
	"github.com/jonesrussell/yophone-bot/infrastructure/profiling"
	"github.com/jonesrussell/yophone-bot/internal/bot"
	"github.com/jonesrussell/yophone-bot/internal/config"
	"github.com/jonesrussell/yophone-bot/internal/telemetry"
	"github.com/jonesrussell/yophone-bot/internal/webhook"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const httpMetricsPrefix = "yophone_bot"

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot service",
		Long: `Run the bot: receive updates by polling getUpdates or through a webhook,
answer configured commands and serve /health and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if validationErr := cfg.Validate(); validationErr != nil {
				return fmt.Errorf("validate config: %w", validationErr)
			}

			deps, err := depsFromConfig(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runService(ctx, deps)
		},
	}
}

// runService wires the client, bot, webhook and HTTP server and runs them
// until ctx is cancelled or one of them fails.
func runService(ctx context.Context, deps *commandDeps) error {
	cfg := deps.Config
	log := deps.Logger

	profiler, err := profiling.StartPyroscope(cfg.Profiling, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	metrics := telemetry.New(nil)
	httpMetrics := inframetrics.NewHTTPMetrics(metrics.Registry(), httpMetricsPrefix)

	client, err := deps.newClient(yophone.WithRecorder(metrics))
	if err != nil {
		return err
	}

	b := bot.New(client,
		bot.WithLogger(log.With(logger.String("component", "bot"))),
		bot.WithRecorder(metrics),
		bot.WithPollInterval(cfg.Bot.PollInterval),
		bot.WithErrorBackoff(cfg.Bot.ErrorBackoff),
	)
	replies := b.RegisterReplies(client, cfg.Bot.Replies())

	publishCommands(ctx, client, cfg, log)

	server := newHTTPServer(cfg, log, b, client, metrics, httpMetrics)

	log.Info("Bot starting",
		logger.String("mode", cfg.Bot.Mode),
		logger.Int("port", cfg.Service.Port),
		logger.Int("replies", replies),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return profiling.RunPprof(gctx, cfg.Profiling, log) })

	switch cfg.Bot.Mode {
	case config.ModeWebhook:
		g.Go(func() error {
			if _, setErr := client.SetWebhook(gctx, cfg.Bot.WebhookURL); setErr != nil {
				return fmt.Errorf("register webhook: %w", setErr)
			}
			return nil
		})
	default:
		g.Go(func() error {
			clearWebhook(gctx, client, log)
			return b.StartPolling(gctx, cfg.Bot.PollInterval)
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}

	log.Info("Bot stopped")
	return nil
}

type webhookDeleter interface {
	DeleteWebhook(ctx context.Context) (yophone.Result, error)
}

// clearWebhook removes a webhook left by an earlier webhook-mode run, so
// updates are not pushed elsewhere while the bot polls. Failure is only logged.
func clearWebhook(ctx context.Context, client webhookDeleter, log logger.Logger) {
	if _, err := client.DeleteWebhook(ctx); err != nil {
		log.Warn("Failed to delete webhook before polling",
			logger.Error(err))
	}
}

// publishCommands advertises configured commands. Failure is only logged.
func publishCommands(ctx context.Context, client *yophone.Client, cfg *config.Config, log logger.Logger) {
	commands := cfg.Bot.APICommands()
	if len(commands) == 0 {
		return
	}
	if _, err := client.SetCommands(ctx, commands); err != nil {
		log.Warn("Failed to publish commands", logger.Error(err))
	}
}

func newHTTPServer(
	cfg *config.Config,
	log logger.Logger,
	b *bot.Bot,
	client *yophone.Client,
	metrics *telemetry.Metrics,
	httpMetrics *inframetrics.HTTPMetrics,
) *infragin.Server {
	hook := webhook.NewHandler(b, log.With(logger.String("component", "webhook")))

	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithMiddleware(httpMetrics.Middleware()).
		WithMetrics(metrics.Handler()).
		WithHealthCheck("yophone_api", infragin.PingChecker(infragin.HealthStatusDegraded, func(ctx context.Context) error {
			_, err := client.GetMe(ctx)
			return err
		})).
		WithRoutes(func(router *gin.Engine) {
			if cfg.Bot.Mode == config.ModeWebhook {
				hook.RegisterRoutes(router, cfg.Bot.WebhookPath)
			}
		}).
		Build()
}
