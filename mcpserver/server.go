package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/acms/config"
	"github.com/isdmx/acms/tools"
)

// Server identity reported to MCP clients
const (
	Name    = "acms"
	Version = "1.0.0"
)

// EndpointPath is where the HTTP transport accepts MCP requests
const EndpointPath = "/mcp"

const instructions = "Tools for managing containers, images, networks, volumes, the builder, " +
	"registry credentials and system services through the container CLI. " +
	"Use acms_search_tools or acms_list_categories to find the right tool."

// CommandExecutor runs container CLI commands and reports executor statistics
type CommandExecutor interface {
	tools.Runner
	tools.StatsSource
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	executor  CommandExecutor
	registry  *tools.Registry
	mcpServer *server.MCPServer

	mu         sync.Mutex
	httpServer *server.StreamableHTTPServer
	stopped    bool
}

// New creates a new MCPServer with the configured tool categories registered
func New(cfg *config.Config, logger *zap.Logger, executor CommandExecutor, registry *tools.Registry) (*MCPServer, error) {
	s := &MCPServer{
		config:   cfg,
		logger:   logger,
		executor: executor,
		registry: registry,
	}

	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.String("executor.binary", cfg.Executor.Binary),
		zap.Int("executor.command_timeout", cfg.Executor.CommandTimeoutSec),
		zap.Int("executor.max_concurrent", cfg.Executor.MaxConcurrent),
		zap.Int("executor.max_arg_length", cfg.Executor.MaxArgLength),
		zap.Int("executor.max_args", cfg.Executor.MaxArgs),
		zap.Int("executor.shutdown_timeout", cfg.Executor.ShutdownTimeoutSec),
		zap.Bool("metrics.enabled", cfg.Metrics.Enabled),
		zap.Strings("tools.categories", cfg.Tools.Categories),
	)

	s.mcpServer = server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	count := 0
	if len(cfg.Tools.Categories) == 0 {
		count = registry.RegisterAll(s.mcpServer, executor)
	} else {
		for _, category := range cfg.Tools.Categories {
			count += registry.RegisterCategory(s.mcpServer, executor, category)
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("no tools registered for categories %v", cfg.Tools.Categories)
	}

	discovery := registry.RegisterDiscovery(s.mcpServer, executor)

	logger.Info("MCP server ready",
		zap.Int("tools", count),
		zap.Int("discovery_tools", discovery))

	return s, nil
}

// Serve runs the configured transport until ctx is canceled or the transport stops
func (s *MCPServer) Serve(ctx context.Context) error {
	switch s.config.Server.Transport {
	case "stdio":
		return s.ServeStdio(ctx)
	case "http":
		return s.ServeHTTP()
	default:
		return fmt.Errorf("unsupported transport: %s", s.config.Server.Transport)
	}
}

// ServeStdio serves MCP over the process's standard input and output
func (s *MCPServer) ServeStdio(ctx context.Context) error {
	return s.ListenStdio(ctx, os.Stdin, os.Stdout)
}

// ListenStdio serves newline-delimited MCP messages from in, writing responses to out.
// Tool calls run with ctx, so canceling it aborts calls that are still executing.
func (s *MCPServer) ListenStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server on stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	s.logger.Info("stdio transport stopped")
	return nil
}

// ServeHTTP serves MCP over streamable HTTP on the configured port.
// It returns nil after Shutdown.
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port), zap.String("path", EndpointPath))

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger.Named("http")),
	}
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithStreamableHTTPServer(httpServer),
		server.WithEndpointPath(EndpointPath),
	)
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, streamable)
	httpServer.Handler = mux

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.httpServer = streamable
	s.mu.Unlock()

	err := streamable.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http transport failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP transport if it is running
func (s *MCPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	s.logger.Info("stopping HTTP transport")
	return httpServer.Shutdown(ctx)
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
