package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/yophone-bot/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string        `yaml:"name"`
	APIKey   string        `env:"TEST_YOPHONE_KEY"      yaml:"api_key"`
	Interval time.Duration `env:"TEST_YOPHONE_INTERVAL" yaml:"interval"`
	Debug    bool          `env:"TEST_YOPHONE_DEBUG"    yaml:"debug"`
	Nested   struct {
		Port  int      `env:"TEST_YOPHONE_PORT"  yaml:"port"`
		Hosts []string `env:"TEST_YOPHONE_HOSTS" yaml:"hosts"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_FileDefaultsAndEnv(t *testing.T) {
	path := writeFile(t, "name: from-file\napi_key: file-key\nnested:\n  port: 9000\n")
	t.Setenv("TEST_YOPHONE_KEY", "env-key")
	t.Setenv("TEST_YOPHONE_INTERVAL", "7s")
	t.Setenv("TEST_YOPHONE_DEBUG", "yes")
	t.Setenv("TEST_YOPHONE_HOSTS", "a, b ,c")

	cfg, err := config.Load[testConfig](path, func(c *testConfig) {
		if c.Name == "" {
			c.Name = "default"
		}
		if c.Interval == 0 {
			c.Interval = time.Second
		}
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, "env-key", cfg.APIKey, "env must override file")
	assert.Equal(t, 7*time.Second, cfg.Interval, "env must override defaults")
	assert.True(t, cfg.Debug)
	assert.Equal(t, 9000, cfg.Nested.Port)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Nested.Hosts)
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("TEST_YOPHONE_KEY", "only-env")

	cfg, err := config.Load[testConfig](filepath.Join(t.TempDir(), "absent.yml"), func(c *testConfig) {
		c.Name = "default"
	})
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, "only-env", cfg.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unterminated\n")

	_, err := config.Load[testConfig](path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_UnparseableEnvKeepsValue(t *testing.T) {
	path := writeFile(t, "interval: 2s\n")
	t.Setenv("TEST_YOPHONE_INTERVAL", "soon")

	cfg, err := config.Load[testConfig](path, nil)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Interval)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/yophone/config.yml")
	assert.Equal(t, "/etc/yophone/config.yml", config.GetConfigPath("config.yml"))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidatePort("p", 8080))
	require.EqualError(t, config.ValidatePort("service.port", 0), "service.port: must be between 1 and 65535")

	require.NoError(t, config.ValidateRequired("k", "v"))
	require.EqualError(t, config.ValidateRequired("yophone.api_key", "  "), "yophone.api_key: is required")

	require.NoError(t, config.ValidateOneOf("bot.mode", "poll", "poll", "webhook"))
	require.EqualError(t, config.ValidateOneOf("bot.mode", "push", "poll", "webhook"),
		"bot.mode: must be one of: poll, webhook")

	require.NoError(t, config.ValidateHTTPURL("u", "https://bot.example.com/webhook"))
	require.Error(t, config.ValidateHTTPURL("u", "/webhook"))
	require.Error(t, config.ValidateHTTPURL("u", "ftp://example.com"))

	require.NoError(t, config.ValidateLogLevel("debug"))
	require.Error(t, config.ValidateLogLevel("trace"))
}
