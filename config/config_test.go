package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			HTTPPort:  8080,
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		Executor: ExecutorConfig{
			Binary:             "container",
			CommandTimeoutSec:  300,
			MaxConcurrent:      10,
			MaxArgLength:       65536,
			MaxArgs:            1024,
			ShutdownTimeoutSec: 30,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
		Tools: ToolsConfig{
			Categories: []string{"container", "image"},
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		require.NoError(t, validConfig().validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"InvalidServerTransport", func(c *Config) { c.Server.Transport = "invalid" }, "invalid server.transport"},
		{"InvalidHTTPPort", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid server.http_port"},
		{"InvalidLoggingMode", func(c *Config) { c.Logging.Mode = "invalid_mode" }, "invalid logging.mode"},
		{"InvalidLogLevel", func(c *Config) { c.Logging.Level = "invalid_level" }, "invalid logging.level"},
		{"EmptyBinary", func(c *Config) { c.Executor.Binary = " " }, "executor.binary must not be empty"},
		{"InvalidCommandTimeout", func(c *Config) { c.Executor.CommandTimeoutSec = 0 }, "executor.command_timeout must be positive"},
		{"InvalidMaxConcurrent", func(c *Config) { c.Executor.MaxConcurrent = -1 }, "executor.max_concurrent must be positive"},
		{"InvalidMaxArgLength", func(c *Config) { c.Executor.MaxArgLength = 0 }, "executor.max_arg_length must be positive"},
		{"InvalidMaxArgs", func(c *Config) { c.Executor.MaxArgs = 0 }, "executor.max_args must be positive"},
		{"NegativeShutdownTimeout", func(c *Config) { c.Executor.ShutdownTimeoutSec = -1 }, "executor.shutdown_timeout must not be negative"},
		{"MetricsWithoutAddress", func(c *Config) { c.Metrics = MetricsConfig{Enabled: true} }, "metrics.address is required"},
		{"UnknownCategory", func(c *Config) { c.Tools.Categories = []string{"container", "compose"} }, "unknown tools.categories entry: compose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("StdioIgnoresHTTPPort", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "stdio"
		cfg.Server.HTTPPort = 0
		require.NoError(t, cfg.validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "stdio", cfg.Server.Transport)
		assert.Equal(t, "container", cfg.Executor.Binary)
		assert.Equal(t, 300, cfg.Executor.CommandTimeoutSec)
		assert.Equal(t, 10, cfg.Executor.MaxConcurrent)
		assert.Equal(t, 65536, cfg.Executor.MaxArgLength)
		assert.Equal(t, 1024, cfg.Executor.MaxArgs)
		assert.Equal(t, Categories, cfg.Tools.Categories)
		assert.Equal(t, 300*time.Second, cfg.CommandTimeout())
		assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout())
	})

	t.Run("ShortEnvironmentVariables", func(t *testing.T) {
		t.Setenv("ACMS_COMMAND_TIMEOUT", "42")
		t.Setenv("ACMS_MAX_CONCURRENT", "3")
		t.Setenv("ACMS_MAX_ARG_LENGTH", "128")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Executor.CommandTimeoutSec)
		assert.Equal(t, 3, cfg.Executor.MaxConcurrent)
		assert.Equal(t, 128, cfg.Executor.MaxArgLength)
	})

	t.Run("PrefixedEnvironmentVariables", func(t *testing.T) {
		t.Setenv("ACMS_SERVER_TRANSPORT", "http")
		t.Setenv("ACMS_SERVER_HTTP_PORT", "9999")
		t.Setenv("ACMS_EXECUTOR_BINARY", "/usr/local/bin/container")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "http", cfg.Server.Transport)
		assert.Equal(t, 9999, cfg.Server.HTTPPort)
		assert.Equal(t, "/usr/local/bin/container", cfg.Executor.Binary)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "acms.yaml")
		content := []byte(`
logging:
  mode: development
  level: debug
executor:
  max_concurrent: 4
tools:
  categories: [container, system]
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "development", cfg.Logging.Mode)
		assert.Equal(t, 4, cfg.Executor.MaxConcurrent)
		assert.Equal(t, []string{"container", "system"}, cfg.Tools.Categories)
		assert.Equal(t, 300, cfg.Executor.CommandTimeoutSec)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("InvalidEnvironmentValue", func(t *testing.T) {
		t.Setenv("ACMS_MAX_CONCURRENT", "0")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.max_concurrent must be positive")
	})
}
