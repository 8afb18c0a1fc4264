package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/acms/config"
	"github.com/isdmx/acms/executor"
	"github.com/isdmx/acms/logger"
	"github.com/isdmx/acms/mcpserver"
	"github.com/isdmx/acms/metrics"
	"github.com/isdmx/acms/tools"
)

const stopTimeout = 2 * time.Minute

func main() {
	fx.New(appOptions()).Run()
}

func appOptions() fx.Option {
	return fx.Options(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Prometheus registry and the executor observer recording into it
			metrics.NewRegistry,
			newObserver,

			// The single process-wide command executor
			executor.NewFromConfig,
			func(exec *executor.Executor) mcpserver.CommandExecutor { return exec },

			// Tool catalog
			tools.LoadRegistry,

			// MCP Server
			mcpserver.New,
		),

		fx.Invoke(registerMetricsExporter, registerTransport),

		fx.StopTimeout(stopTimeout),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func newObserver(registry *prometheus.Registry) (executor.Observer, error) {
	collector, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}
	return collector, nil
}

func registerMetricsExporter(lc fx.Lifecycle, cfg *config.Config, registry *prometheus.Registry, log *zap.Logger) {
	if !cfg.Metrics.Enabled {
		return
	}

	exporter := metrics.NewExporter(cfg.Metrics.Address, registry, log.Named("metrics"))
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return exporter.Start()
		},
		OnStop: exporter.Shutdown,
	})
}

// transport is the MCP transport run for the lifetime of the app
type transport interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func registerTransport(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *mcpserver.MCPServer,
	exec *executor.Executor,
) {
	lc.Append(transportHook(log, shutdowner, server, func() {
		exec.Shutdown(cfg.ShutdownTimeout())
	}))
}

// transportHook serves t in the background. On stop, drain runs while the
// transport is still up so in-flight tool calls finish and their responses
// are delivered; only then is the transport torn down.
func transportHook(log *zap.Logger, shutdowner fx.Shutdowner, t transport, drain func()) fx.Hook {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	return fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				if err := t.Serve(ctx); err != nil {
					log.Error("MCP transport failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				if ctx.Err() == nil {
					log.Info("MCP transport finished, shutting down")
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			drain()

			cancel()
			err := t.Shutdown(stopCtx)

			select {
			case <-done:
			case <-stopCtx.Done():
				log.Warn("MCP transport did not stop in time")
			}
			return err
		},
	}
}
