package executor

import (
	"go.uber.org/zap"

	"github.com/isdmx/acms/config"
)

// NewFromConfig creates the process-wide Executor from the application configuration
func NewFromConfig(logger *zap.Logger, cfg *config.Config, observer Observer) *Executor {
	executorConfig := Config{
		Binary:         cfg.Executor.Binary,
		DefaultTimeout: cfg.CommandTimeout(),
		MaxConcurrent:  cfg.Executor.MaxConcurrent,
		MaxArgLength:   cfg.Executor.MaxArgLength,
		MaxArgs:        cfg.Executor.MaxArgs,
	}

	executor := New(logger.Named("executor"), executorConfig, WithObserver(observer))

	logger.Info("command executor ready",
		zap.String("executor.binary", executorConfig.Binary),
		zap.Duration("executor.command_timeout", executorConfig.DefaultTimeout),
		zap.Int("executor.max_concurrent", executorConfig.MaxConcurrent),
		zap.Int("executor.max_arg_length", executorConfig.MaxArgLength),
		zap.Int("executor.max_args", executorConfig.MaxArgs))

	return executor
}
