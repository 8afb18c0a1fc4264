package tools

import (
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/acms/config"
)

// CategoryInfo summarizes one tool category
type CategoryInfo struct {
	Name      string   `json:"name"`
	ToolCount int      `json:"tool_count"`
	Tools     []string `json:"tools"`
}

// Registry indexes catalog entries by name and category
type Registry struct {
	logger *zap.Logger
	specs  []*Spec
	byName map[string]*Spec
}

// NewRegistry creates a Registry over specs
func NewRegistry(logger *zap.Logger, specs []Spec) *Registry {
	r := &Registry{
		logger: logger,
		specs:  make([]*Spec, 0, len(specs)),
		byName: make(map[string]*Spec, len(specs)),
	}
	for i := range specs {
		spec := &specs[i]
		r.specs = append(r.specs, spec)
		r.byName[spec.Name] = spec
	}
	return r
}

// LoadRegistry creates a Registry over the embedded catalog
func LoadRegistry(logger *zap.Logger) (*Registry, error) {
	specs, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return NewRegistry(logger, specs), nil
}

// Categories returns the known tool categories in registration order
func (r *Registry) Categories() []string {
	return slices.Clone(config.Categories)
}

// Discover returns the tool specs in the given categories, or in all categories when none are given.
// Unknown categories are logged and skipped.
func (r *Registry) Discover(categories ...string) []*Spec {
	if len(categories) == 0 {
		categories = config.Categories
	}

	var discovered []*Spec
	for _, category := range categories {
		if !slices.Contains(config.Categories, category) {
			r.logger.Warn("unknown tool category", zap.String("category", category))
			continue
		}
		for _, spec := range r.specs {
			if spec.Category == category {
				discovered = append(discovered, spec)
			}
		}
	}

	r.logger.Debug("discovered tools",
		zap.Int("count", len(discovered)),
		zap.Int("categories", len(categories)))
	return discovered
}

// Lookup returns the tool spec with the given tool name
func (r *Registry) Lookup(name string) (*Spec, bool) {
	spec, ok := r.byName[name]
	return spec, ok
}

// Search matches query case-insensitively against tool names, descriptions and keywords
func (r *Registry) Search(query string) []*Spec {
	query = strings.ToLower(strings.TrimSpace(query))

	var matches []*Spec
	for _, spec := range r.specs {
		if matchesQuery(spec, query) {
			matches = append(matches, spec)
		}
	}
	return matches
}

func matchesQuery(spec *Spec, query string) bool {
	if strings.Contains(strings.ToLower(spec.Name), query) ||
		strings.Contains(strings.ToLower(spec.Description), query) {
		return true
	}
	for _, keyword := range spec.Keywords {
		if strings.Contains(strings.ToLower(keyword), query) {
			return true
		}
	}
	return false
}

// ListCategories returns every category with its tool count and short tool names
func (r *Registry) ListCategories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(config.Categories))
	for _, category := range config.Categories {
		info := CategoryInfo{Name: category, Tools: []string{}}
		for _, spec := range r.specs {
			if spec.Category == category {
				info.Tools = append(info.Tools, spec.ID)
			}
		}
		info.ToolCount = len(info.Tools)
		infos = append(infos, info)
	}
	return infos
}

// RegisterAll adds every catalog tool to s and returns how many were registered
func (r *Registry) RegisterAll(s *server.MCPServer, runner Runner) int {
	count := r.register(s, runner, r.Discover())
	r.logger.Info("registered tools with MCP server", zap.Int("count", count))
	return count
}

// RegisterCategory adds the tools of one category to s and returns how many were registered
func (r *Registry) RegisterCategory(s *server.MCPServer, runner Runner, category string) int {
	count := r.register(s, runner, r.Discover(category))
	r.logger.Info("registered tool category",
		zap.String("category", category),
		zap.Int("count", count))
	return count
}

func (r *Registry) register(s *server.MCPServer, runner Runner, specs []*Spec) int {
	for _, spec := range specs {
		s.AddTool(spec.Tool(), spec.Handler(runner, r.logger.With(zap.String("tool", spec.Name))))
	}
	return len(specs)
}
