package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := LoadRegistry(zaptest.NewLogger(t))
	require.NoError(t, err)
	return registry
}

func names(specs []*Spec) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		out = append(out, spec.Name)
	}
	return out
}

func TestRegistryDiscover(t *testing.T) {
	registry := newTestRegistry(t)

	assert.Len(t, registry.Discover(), 54)
	assert.Equal(t,
		[]string{"acms_registry_login", "acms_registry_logout"},
		names(registry.Discover("auth")))
	assert.Len(t, registry.Discover("network", "volume"), 10)
	assert.Empty(t, registry.Discover("cluster"))
}

func TestRegistryLookup(t *testing.T) {
	registry := newTestRegistry(t)

	spec, ok := registry.Lookup("acms_system_dns_create")
	require.True(t, ok)
	assert.Equal(t, "system", spec.Category)
	assert.Equal(t, []string{"system", "dns", "create"}, spec.Command)

	_, ok = registry.Lookup("acms_container_teleport")
	assert.False(t, ok)
}

func TestRegistrySearch(t *testing.T) {
	registry := newTestRegistry(t)

	assert.Equal(t, []string{
		"acms_builder_delete",
		"acms_builder_start",
		"acms_builder_status",
		"acms_builder_stop",
	}, names(registry.Search("BuildKit")))

	assert.Equal(t, []string{"acms_container_stats"}, names(registry.Search("monitoring")))
	assert.Empty(t, registry.Search("kubernetes"))
}

func TestRegistryListCategories(t *testing.T) {
	registry := newTestRegistry(t)

	categories := registry.ListCategories()
	require.Len(t, categories, 7)
	assert.Equal(t, registry.Categories(), []string{"container", "image", "network", "volume", "builder", "auth", "system"})

	auth := categories[5]
	assert.Equal(t, CategoryInfo{Name: "auth", ToolCount: 2, Tools: []string{"login", "logout"}}, auth)

	total := 0
	for _, category := range categories {
		assert.Equal(t, len(category.Tools), category.ToolCount)
		total += category.ToolCount
	}
	assert.Equal(t, 54, total)
}

func TestRegistryRegister(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("All", func(t *testing.T) {
		s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(false))
		assert.Equal(t, 54, registry.RegisterAll(s, &MockRunner{}))
		assert.Len(t, s.ListTools(), 54)
		assert.NotNil(t, s.GetTool("acms_container_run"))
	})

	t.Run("Category", func(t *testing.T) {
		s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(false))
		assert.Equal(t, 5, registry.RegisterCategory(s, &MockRunner{}, "volume"))
		assert.Len(t, s.ListTools(), 5)
		assert.Nil(t, s.GetTool("acms_container_run"))
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		s := server.NewMCPServer("test", "0.0.0")
		assert.Equal(t, 0, registry.RegisterCategory(s, &MockRunner{}, "cluster"))
		assert.Empty(t, s.ListTools())
	})
}
