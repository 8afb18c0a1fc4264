package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Exporter serves a metrics registry over HTTP
type Exporter struct {
	logger   *zap.Logger
	address  string
	server   *http.Server
	listener net.Listener
}

// NewExporter creates an Exporter for gatherer listening on address
func NewExporter(address string, gatherer prometheus.Gatherer, logger *zap.Logger) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	}))

	return &Exporter{
		logger:  logger,
		address: address,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background
func (e *Exporter) Start() error {
	listener, err := net.Listen("tcp", e.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", e.address, err)
	}
	e.listener = listener

	e.logger.Info("serving metrics", zap.String("address", listener.Addr().String()))

	go func() {
		if err := e.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start
func (e *Exporter) Addr() string {
	if e.listener == nil {
		return e.address
	}
	return e.listener.Addr().String()
}

// Shutdown stops the server
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
