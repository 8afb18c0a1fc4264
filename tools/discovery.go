package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/isdmx/acms/executor"
)

// Discovery tool names
const (
	SearchToolName         = "acms_search_tools"
	ListCategoriesToolName = "acms_list_categories"
	ExecutorStatsToolName  = "acms_executor_stats"
)

// StatsSource reports executor statistics
type StatsSource interface {
	Stats() executor.Stats
}

type toolSummary struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Keywords    []string    `json:"keywords"`
	Annotations Annotations `json:"annotations"`
}

type statsView struct {
	ActiveCount           int     `json:"active_count"`
	MaxConcurrent         int     `json:"max_concurrent"`
	AvailableSlots        int     `json:"available_slots"`
	DefaultTimeoutSeconds float64 `json:"default_timeout"`
	MaxArgumentLength     int     `json:"max_argument_length"`
	MaxArguments          int     `json:"max_arguments"`
}

// RegisterDiscovery adds the search, category listing and executor stats tools to s
func (r *Registry) RegisterDiscovery(s *server.MCPServer, stats StatsSource) int {
	s.AddTool(
		mcp.NewTool(SearchToolName,
			mcp.WithDescription("Search the available container tools by keyword"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("query", mcp.Required(), mcp.Description("Keyword matched against tool names, descriptions and keywords")),
		),
		r.handleSearch,
	)

	s.AddTool(
		mcp.NewTool(ListCategoriesToolName,
			mcp.WithDescription("List tool categories with their tools"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		r.handleListCategories,
	)

	s.AddTool(
		mcp.NewTool(ExecutorStatsToolName,
			mcp.WithDescription("Show command executor limits and current load"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			current := stats.Stats()
			return jsonResult(statsView{
				ActiveCount:           current.ActiveCount,
				MaxConcurrent:         current.MaxConcurrent,
				AvailableSlots:        current.AvailableSlots,
				DefaultTimeoutSeconds: current.DefaultTimeout.Seconds(),
				MaxArgumentLength:     current.MaxArgumentLength,
				MaxArguments:          current.MaxArguments,
			})
		},
	)

	return 3
}

func (r *Registry) handleSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches := r.Search(query)
	summaries := make([]toolSummary, 0, len(matches))
	for _, spec := range matches {
		summaries = append(summaries, toolSummary{
			Name:        spec.Name,
			Category:    spec.Category,
			Description: spec.Description,
			Keywords:    spec.Keywords,
			Annotations: spec.Annotations,
		})
	}
	return jsonResult(summaries)
}

func (r *Registry) handleListCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(r.ListCategories())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
