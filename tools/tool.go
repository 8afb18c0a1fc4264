package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/acms/executor"
)

// Runner runs container CLI commands
type Runner interface {
	Execute(ctx context.Context, req executor.Request) (executor.Result, error)
}

// Tool builds the MCP tool definition
func (s *Spec) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.Description),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(s.Annotations.ReadOnly),
			DestructiveHint: mcp.ToBoolPtr(s.Annotations.Destructive),
			IdempotentHint:  mcp.ToBoolPtr(s.Annotations.Idempotent),
			OpenWorldHint:   mcp.ToBoolPtr(s.Annotations.OpenWorld),
		}),
	}

	for i := range s.Params {
		opts = append(opts, s.Params[i].toolOption())
	}

	opts = append(opts, mcp.WithNumber(TimeoutParam,
		mcp.Description("Command timeout in whole seconds (integer), overrides the server default"),
		mcp.Min(1),
		mcp.Max(float64(MaxTimeoutSeconds)),
		mcp.MultipleOf(1),
	))

	return mcp.NewTool(s.Name, opts...)
}

func (p *Param) toolOption() mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}

	switch p.Type {
	case TypeBoolean:
		return mcp.WithBoolean(p.Name, props...)
	case TypeInteger:
		if p.Default != nil {
			props = append(props, mcp.DefaultNumber(float64(p.Default.(int64))))
		}
		return mcp.WithNumber(p.Name, props...)
	case TypeNumber:
		if p.Default != nil {
			props = append(props, mcp.DefaultNumber(p.Default.(float64)))
		}
		return mcp.WithNumber(p.Name, props...)
	case TypeArray:
		props = append(props, mcp.WithStringItems())
		return mcp.WithArray(p.Name, props...)
	default:
		if p.Default != nil {
			props = append(props, mcp.DefaultString(p.Default.(string)))
		}
		return mcp.WithString(p.Name, props...)
	}
}

// Handler returns the MCP handler that runs the tool command through runner.
// Parameter and execution errors are reported as tool errors; a non-zero
// exit code is a regular result.
func (s *Spec) Handler(runner Runner, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments := request.GetArguments()

		args, err := s.BuildArgs(arguments, logger)
		if err != nil {
			logger.Error("parameter validation error", zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("Parameter validation error: %v", err)), nil
		}

		timeout, err := TimeoutSeconds(arguments)
		if err != nil {
			logger.Error("parameter validation error", zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("Parameter validation error: %v", err)), nil
		}

		result, err := runner.Execute(ctx, executor.Request{
			Args:    args,
			Timeout: time.Duration(timeout) * time.Second,
		})
		if err != nil {
			if errors.Is(err, executor.ErrInvalidArgument) {
				return mcp.NewToolResultErrorFromErr("Parameter validation error", err), nil
			}
			return mcp.NewToolResultErrorFromErr("Execution failed", err), nil
		}

		return mcp.NewToolResultText(result.Format()), nil
	}
}
