package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	infraconfig "github.com/jonesrussell/yophone-bot/infrastructure/config"
	"github.com/jonesrussell/yophone-bot/internal/bot"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{YoPhone: YoPhoneConfig{APIKey: "key"}}
	setDefaults(cfg)
	return cfg
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, defaultServiceName, cfg.Service.Name)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, yophone.DefaultBaseURL, cfg.YoPhone.BaseURL)
	assert.Equal(t, defaultTimeout, cfg.YoPhone.Timeout)
	assert.Equal(t, ModePoll, cfg.Bot.Mode)
	assert.Equal(t, 3*time.Second, cfg.Bot.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Bot.ErrorBackoff)
	assert.Equal(t, "/webhook", cfg.Bot.WebhookPath)
	assert.Equal(t, defaultLoggingLevel, cfg.Logging.Level)
	assert.Equal(t, defaultLoggingFmt, cfg.Logging.Format)
	assert.Equal(t, 6060, cfg.Profiling.PprofPort)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9000
yophone:
  api_key: from-file
bot:
  mode: webhook
  webhook_url: https://bot.example.com/webhook
  poll_interval: 10s
  commands:
    - command: start
      description: Start the bot
      reply: Welcome!
    - command: help
      description: Show help
`), 0o600))

	t.Setenv("YOPHONE_API_KEY", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, "from-env", cfg.YoPhone.APIKey, "environment wins over the file")
	assert.Equal(t, ModeWebhook, cfg.Bot.Mode)
	assert.Equal(t, 10*time.Second, cfg.Bot.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)

	assert.Equal(t, []yophone.Command{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show help"},
	}, cfg.Bot.APICommands())
	assert.Equal(t, []bot.Reply{{Command: "start", Text: "Welcome!"}}, cfg.Bot.Replies())
}

func TestAPICommands_NormalizesNames(t *testing.T) {
	t.Parallel()

	b := BotConfig{Commands: []CommandConfig{
		{Command: "/start", Description: "Start the bot"},
		{Command: " help ", Description: "Show help"},
		{Command: "/", Description: "nameless"},
	}}

	assert.Equal(t, []yophone.Command{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show help"},
	}, b.APICommands())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid poll config", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.YoPhone.APIKey = " " }, "yophone.api_key"},
		{"bad base url", func(c *Config) { c.YoPhone.BaseURL = "not a url" }, "yophone.base_url"},
		{"bad port", func(c *Config) { c.Service.Port = 70000 }, "service.port"},
		{"bad mode", func(c *Config) { c.Bot.Mode = "push" }, "bot.mode"},
		{"webhook without url", func(c *Config) { c.Bot.Mode = ModeWebhook }, "bot.webhook_url"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var vErr *infraconfig.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}
