// Package config holds the yophone-bot service configuration.
package config

import (
	"errors"
	"time"

	infraconfig "github.com/jonesrussell/yophone-bot/infrastructure/config"
	"github.com/jonesrussell/yophone-bot/infrastructure/profiling"
	"github.com/jonesrussell/yophone-bot/internal/bot"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

// Bot modes.
const (
	ModePoll    = "poll"
	ModeWebhook = "webhook"
)

// Default configuration values.
const (
	defaultServiceName  = "yophone-bot"
	defaultServicePort  = 8095
	defaultVersion      = "0.1.0"
	defaultTimeout      = 30 * time.Second
	defaultMode         = ModePoll
	defaultPollInterval = 3 * time.Second
	defaultErrorBackoff = 5 * time.Second
	defaultWebhookPath  = "/webhook"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig    `yaml:"service"`
	YoPhone   YoPhoneConfig    `yaml:"yophone"`
	Bot       BotConfig        `yaml:"bot"`
	Logging   LoggingConfig    `yaml:"logging"`
	Profiling profiling.Config `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"YOPHONE_BOT_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"        yaml:"debug"`
}

// YoPhoneConfig holds API client configuration.
type YoPhoneConfig struct {
	APIKey  string        `env:"YOPHONE_API_KEY"  yaml:"api_key"`
	BaseURL string        `env:"YOPHONE_BASE_URL" yaml:"base_url"`
	Timeout time.Duration `env:"YOPHONE_TIMEOUT"  yaml:"timeout"`
}

// BotConfig holds update delivery and command configuration.
type BotConfig struct {
	Mode         string          `env:"YOPHONE_BOT_MODE"    yaml:"mode"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	ErrorBackoff time.Duration   `yaml:"error_backoff"`
	WebhookURL   string          `env:"YOPHONE_WEBHOOK_URL" yaml:"webhook_url"`
	WebhookPath  string          `yaml:"webhook_path"`
	Commands     []CommandConfig `yaml:"commands"`
}

// CommandConfig is a bot command advertised via setCommands. A non-empty
// Reply is sent back whenever the command is received.
type CommandConfig struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
	Reply       string `yaml:"reply"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.Load[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setYoPhoneDefaults(&cfg.YoPhone)
	setBotDefaults(&cfg.Bot)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLoggingFmt
	}
	cfg.Profiling.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setYoPhoneDefaults(yp *YoPhoneConfig) {
	if yp.BaseURL == "" {
		yp.BaseURL = yophone.DefaultBaseURL
	}
	if yp.Timeout == 0 {
		yp.Timeout = defaultTimeout
	}
}

func setBotDefaults(b *BotConfig) {
	if b.Mode == "" {
		b.Mode = defaultMode
	}
	if b.PollInterval == 0 {
		b.PollInterval = defaultPollInterval
	}
	if b.ErrorBackoff == 0 {
		b.ErrorBackoff = defaultErrorBackoff
	}
	if b.WebhookPath == "" {
		b.WebhookPath = defaultWebhookPath
	}
}

// Validate checks everything the serve command needs.
func (c *Config) Validate() error {
	return errors.Join(
		c.YoPhone.Validate(),
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateLogLevel(c.Logging.Level),
		c.Bot.Validate(),
	)
}

// Validate checks the API client settings. One-shot CLI commands need
// nothing else.
func (y *YoPhoneConfig) Validate() error {
	if err := infraconfig.ValidateRequired("yophone.api_key", y.APIKey); err != nil {
		return err
	}
	return infraconfig.ValidateHTTPURL("yophone.base_url", y.BaseURL)
}

// Validate checks the delivery mode settings.
func (b *BotConfig) Validate() error {
	if err := infraconfig.ValidateOneOf("bot.mode", b.Mode, ModePoll, ModeWebhook); err != nil {
		return err
	}
	if b.Mode == ModeWebhook {
		return infraconfig.ValidateHTTPURL("bot.webhook_url", b.WebhookURL)
	}
	return nil
}

// APICommands returns the commands to publish with setCommands. Names are
// normalized with yophone.CommandName; entries without a name are skipped.
func (b *BotConfig) APICommands() []yophone.Command {
	commands := make([]yophone.Command, 0, len(b.Commands))
	for _, c := range b.Commands {
		name := yophone.CommandName(c.Command)
		if name == "" {
			continue
		}
		commands = append(commands, yophone.Command{Command: name, Description: c.Description})
	}
	return commands
}

// Replies returns the fixed-text replies for configured commands.
func (b *BotConfig) Replies() []bot.Reply {
	replies := make([]bot.Reply, 0, len(b.Commands))
	for _, c := range b.Commands {
		if c.Reply != "" {
			replies = append(replies, bot.Reply{Command: c.Command, Text: c.Reply})
		}
	}
	return replies
}
