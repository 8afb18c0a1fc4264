package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/acms/config"
	"github.com/isdmx/acms/executor"
	"github.com/isdmx/acms/logger"
	"github.com/isdmx/acms/mcpserver"
	"github.com/isdmx/acms/metrics"
	"github.com/isdmx/acms/tools"
)

const fakeContainerCLI = `#!/bin/sh
if [ "$1" = "image" ] && [ "$2" = "inspect" ]; then
  echo "no such image: $3" >&2
  exit 1
fi
echo "args: $*"
`

func writeFakeCLI(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake container CLI is a shell script")
	}

	path := filepath.Join(t.TempDir(), "container")
	require.NoError(t, os.WriteFile(path, []byte(fakeContainerCLI), 0o755))
	return path
}

func writeConfig(t *testing.T, binary string) string {
	t.Helper()

	content := `server:
  transport: stdio
logging:
  mode: development
  level: debug
executor:
  binary: ` + binary + `
  command_timeout: 10
  max_concurrent: 2
tools:
  categories: [container, image, system]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func callTool(t *testing.T, s *mcpserver.MCPServer, name string, arguments map[string]any) *mcp.CallToolResult {
	t.Helper()

	tool := s.GetMCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s should be registered", name)

	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = arguments

	result, err := tool.Handler(context.Background(), request)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func commandCount(t *testing.T, registry *prometheus.Registry, outcome string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "acms_executor_commands_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// TestIntegrationConfigToToolCall wires config, logger, metrics, executor,
// tool registry and MCP server the same way the binary does and drives tool
// calls against a fake container CLI.
func TestIntegrationConfigToToolCall(t *testing.T) {
	binary := writeFakeCLI(t)

	cfg, err := config.Load(writeConfig(t, binary))
	require.NoError(t, err)
	assert.Equal(t, binary, cfg.Executor.Binary)
	assert.Equal(t, 1024, cfg.Executor.MaxArgs)

	appLogger, err := logger.NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, appLogger)
	_ = appLogger.Sync()

	testLogger := zaptest.NewLogger(t)

	registry := metrics.NewRegistry()
	collector, err := metrics.New(registry)
	require.NoError(t, err)

	exec := executor.NewFromConfig(testLogger, cfg, collector)
	t.Cleanup(func() { exec.Shutdown(cfg.ShutdownTimeout()) })

	toolRegistry, err := tools.LoadRegistry(testLogger)
	require.NoError(t, err)

	server, err := mcpserver.New(cfg, testLogger, exec, toolRegistry)
	require.NoError(t, err)

	t.Run("SuccessfulCommand", func(t *testing.T) {
		result := callTool(t, server, "acms_container_list", map[string]any{"all": true})
		assert.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "Command executed successfully:")
		assert.Contains(t, text, "args: list --all")
		assert.Equal(t, 1.0, commandCount(t, registry, "success"))
	})

	t.Run("NonZeroExitIsNotAToolError", func(t *testing.T) {
		result := callTool(t, server, "acms_image_inspect", map[string]any{"image": "missing:latest"})
		assert.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "Command failed with exit code 1:")
		assert.Contains(t, text, "no such image: missing:latest")
		assert.Equal(t, 1.0, commandCount(t, registry, "nonzero_exit"))
	})

	t.Run("MissingRequiredParameter", func(t *testing.T) {
		result := callTool(t, server, "acms_image_inspect", map[string]any{})
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Parameter validation error:")
	})

	t.Run("InjectionRejectedBeforeSpawn", func(t *testing.T) {
		result := callTool(t, server, "acms_image_inspect", map[string]any{"image": "alpine; rm -rf /"})
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Parameter validation error:")
		assert.Equal(t, 1.0, commandCount(t, registry, "invalid_argument"))
	})

	t.Run("CategoryFilterApplied", func(t *testing.T) {
		assert.Nil(t, server.GetMCPServer().GetTool("acms_volume_list"))
		assert.NotNil(t, server.GetMCPServer().GetTool(tools.ExecutorStatsToolName))
	})

	t.Run("ExecutorStatsAfterCalls", func(t *testing.T) {
		stats := exec.Stats()
		assert.Equal(t, 0, stats.ActiveCount)
		assert.Equal(t, 2, stats.MaxConcurrent)
		assert.Equal(t, 2, stats.AvailableSlots)
	})
}
