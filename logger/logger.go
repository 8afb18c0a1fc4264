package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isdmx/acms/config"
)

// ServiceName is attached to every entry as the "service" field
const ServiceName = "acms"

// NewFromConfig builds the application logger from the logging section
func NewFromConfig(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.Logging.Mode, cfg.Logging.Level)
}

// New creates a logger for the given mode ("production" or "development") and level
func New(mode, level string) (*zap.Logger, error) {
	cfg, err := buildConfig(mode, level)
	if err != nil {
		return nil, err
	}
	return cfg.Build(zap.Fields(zap.String("service", ServiceName)))
}

func buildConfig(mode, level string) (zap.Config, error) {
	var cfg zap.Config

	switch mode {
	case "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	default:
		return zap.Config{}, fmt.Errorf("invalid logging mode: %s, must be 'production' or 'development'", mode)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid logging level: %s, must be one of 'debug', 'info', 'warn', 'error', 'dpanic', 'panic', 'fatal'", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	// stdout carries MCP frames on the stdio transport
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg, nil
}
