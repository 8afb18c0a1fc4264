package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Categories lists every tool category known to the server
var Categories = []string{"container", "image", "network", "volume", "builder", "auth", "system"}

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tools    ToolsConfig    `mapstructure:"tools"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// ExecutorConfig holds the command executor configuration
type ExecutorConfig struct {
	Binary             string `mapstructure:"binary"`
	CommandTimeoutSec  int    `mapstructure:"command_timeout"`
	MaxConcurrent      int    `mapstructure:"max_concurrent"`
	MaxArgLength       int    `mapstructure:"max_arg_length"`
	MaxArgs            int    `mapstructure:"max_args"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus exporter configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// ToolsConfig selects which tool categories are registered
type ToolsConfig struct {
	Categories []string `mapstructure:"categories"`
}

// envAliases maps config keys to the short environment variables documented for operators.
var envAliases = map[string]string{
	"executor.command_timeout":  "ACMS_COMMAND_TIMEOUT",
	"executor.max_concurrent":   "ACMS_MAX_CONCURRENT",
	"executor.max_arg_length":   "ACMS_MAX_ARG_LENGTH",
	"executor.max_args":         "ACMS_MAX_ARGS",
	"executor.shutdown_timeout": "ACMS_SHUTDOWN_TIMEOUT",
}

// New loads and validates the application configuration.
// ACMS_CONFIG may point at an explicit config file.
func New() (*Config, error) {
	return Load(os.Getenv("ACMS_CONFIG"))
}

// Load reads configuration from path, or searches ./config.yaml and ./config/config.yaml when path is empty
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("ACMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		long := "ACMS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env, long); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_port", 8080)

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")

	v.SetDefault("executor.binary", "container")
	v.SetDefault("executor.command_timeout", 300)
	v.SetDefault("executor.max_concurrent", 10)
	v.SetDefault("executor.max_arg_length", 65536)
	v.SetDefault("executor.max_args", 1024)
	v.SetDefault("executor.shutdown_timeout", 30)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")

	v.SetDefault("tools.categories", Categories)
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.Transport == "http" && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	if strings.TrimSpace(c.Executor.Binary) == "" {
		return fmt.Errorf("executor.binary must not be empty")
	}

	if c.Executor.CommandTimeoutSec <= 0 {
		return fmt.Errorf("executor.command_timeout must be positive, got: %d", c.Executor.CommandTimeoutSec)
	}

	if c.Executor.MaxConcurrent <= 0 {
		return fmt.Errorf("executor.max_concurrent must be positive, got: %d", c.Executor.MaxConcurrent)
	}

	if c.Executor.MaxArgLength <= 0 {
		return fmt.Errorf("executor.max_arg_length must be positive, got: %d", c.Executor.MaxArgLength)
	}

	if c.Executor.MaxArgs <= 0 {
		return fmt.Errorf("executor.max_args must be positive, got: %d", c.Executor.MaxArgs)
	}

	if c.Executor.ShutdownTimeoutSec < 0 {
		return fmt.Errorf("executor.shutdown_timeout must not be negative, got: %d", c.Executor.ShutdownTimeoutSec)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}

	known := make(map[string]bool, len(Categories))
	for _, category := range Categories {
		known[category] = true
	}
	for _, category := range c.Tools.Categories {
		if !known[category] {
			return fmt.Errorf("unknown tools.categories entry: %s", category)
		}
	}

	return nil
}

// CommandTimeout returns the default command timeout as a duration
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Executor.CommandTimeoutSec) * time.Second
}

// ShutdownTimeout returns how long shutdown waits for in-flight commands
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Executor.ShutdownTimeoutSec) * time.Second
}
