package cmd

import (
	"errors"
	"fmt"

	infraconfig "github.com/jonesrussell/yophone-bot/infrastructure/config"
	infrahttp "github.com/jonesrussell/yophone-bot/infrastructure/http"
	"github.com/jonesrussell/yophone-bot/infrastructure/logger"
	"github.com/jonesrussell/yophone-bot/internal/config"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

const defaultConfigPath = "config.yml"

// ErrConfigRequired is returned when dependencies are built without a config.
var ErrConfigRequired = errors.New("config is required")

// commandDeps holds what every command needs.
type commandDeps struct {
	Config *config.Config
	Logger logger.Logger
}

// loadConfig loads the config file named by --config, $CONFIG_PATH or the
// default path, and applies --debug.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newCommandDeps loads the config, validates what one-shot commands need and
// builds the logger.
func newCommandDeps(opts *rootOptions) (*commandDeps, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if validationErr := cfg.YoPhone.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}

	return depsFromConfig(cfg)
}

func depsFromConfig(cfg *config.Config) (*commandDeps, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &commandDeps{
		Config: cfg,
		Logger: log.With(logger.String("service", cfg.Service.Name)),
	}, nil
}

// newClient creates the API client from the loaded config.
func (d *commandDeps) newClient(opts ...yophone.Option) (*yophone.Client, error) {
	httpClient := infrahttp.NewClient(infrahttp.ClientConfig{Timeout: d.Config.YoPhone.Timeout})

	base := []yophone.Option{
		yophone.WithBaseURL(d.Config.YoPhone.BaseURL),
		yophone.WithHTTPClient(httpClient),
		yophone.WithLogger(d.Logger.With(logger.String("component", "yophone"))),
	}

	client, err := yophone.New(d.Config.YoPhone.APIKey, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}
