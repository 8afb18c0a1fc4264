package tools

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/isdmx/acms/config"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ParamType is the JSON type a tool parameter accepts
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeBoolean ParamType = "boolean"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeArray   ParamType = "array"
)

// TimeoutParam is accepted by every tool and overrides the executor's default timeout
const TimeoutParam = "timeout"

// Annotations are the MCP behaviour hints published with a tool
type Annotations struct {
	ReadOnly    bool `yaml:"read_only" json:"read_only"`
	Destructive bool `yaml:"destructive" json:"destructive"`
	Idempotent  bool `yaml:"idempotent" json:"idempotent"`
	OpenWorld   bool `yaml:"open_world" json:"open_world"`
}

// Param describes one tool parameter and how it maps onto the command line
type Param struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Type        ParamType `yaml:"type"`
	Flag        string    `yaml:"flag"`
	Positional  bool      `yaml:"positional"`
	Required    bool      `yaml:"required"`
	Default     any       `yaml:"default"`
	// Split shell-splits a string positional into several arguments
	Split bool `yaml:"split"`
}

// Spec is one catalog entry
type Spec struct {
	// ID is the tool's short name within its category
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Category    string      `yaml:"category"`
	Description string      `yaml:"description"`
	Keywords    []string    `yaml:"keywords"`
	Annotations Annotations `yaml:"annotations"`
	Command     []string    `yaml:"command"`
	Params      []Param     `yaml:"params"`
}

// LoadCatalog parses the embedded catalog
func LoadCatalog() ([]Spec, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and validates a YAML catalog. Defaults are normalized
// to the Go type of their parameter.
func ParseCatalog(data []byte) ([]Spec, error) {
	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to decode tool catalog: %w", err)
	}

	seen := make(map[string]bool, len(specs))
	for i := range specs {
		spec := &specs[i]
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, spec.Name, err)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate tool name in catalog: %s", spec.Name)
		}
		seen[spec.Name] = true
	}

	return specs, nil
}

func (s *Spec) validate() error {
	if s.Name == "" || s.ID == "" {
		return fmt.Errorf("name and id are required")
	}
	if !slices.Contains(config.Categories, s.Category) {
		return fmt.Errorf("unknown category %q", s.Category)
	}
	if len(s.Command) == 0 {
		return fmt.Errorf("command must not be empty")
	}

	names := make(map[string]bool, len(s.Params))
	for i := range s.Params {
		p := &s.Params[i]
		if p.Name == "" {
			return fmt.Errorf("param %d has no name", i)
		}
		if p.Name == TimeoutParam {
			return fmt.Errorf("param name %q is reserved", TimeoutParam)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate param %q", p.Name)
		}
		names[p.Name] = true

		if err := p.validate(); err != nil {
			return fmt.Errorf("param %q: %w", p.Name, err)
		}
	}
	return nil
}

func (p *Param) validate() error {
	switch p.Type {
	case TypeString, TypeBoolean, TypeInteger, TypeNumber, TypeArray:
	default:
		return fmt.Errorf("unknown type %q", p.Type)
	}

	if p.Positional {
		if p.Flag != "" {
			return fmt.Errorf("positional params take no flag")
		}
		if p.Type != TypeString && p.Type != TypeArray {
			return fmt.Errorf("positional params must be strings or arrays")
		}
	} else if p.Flag == "" {
		return fmt.Errorf("flag is required")
	}

	if p.Split && (p.Type != TypeString || !p.Positional) {
		return fmt.Errorf("split applies to positional strings only")
	}

	if p.Default == nil {
		return nil
	}
	if p.Required {
		return fmt.Errorf("required params cannot have a default")
	}

	switch p.Type {
	case TypeString:
		if _, ok := p.Default.(string); !ok {
			return fmt.Errorf("default %v is not a string", p.Default)
		}
	case TypeInteger:
		v, ok := p.Default.(int)
		if !ok {
			return fmt.Errorf("default %v is not an integer", p.Default)
		}
		p.Default = int64(v)
	case TypeNumber:
		switch v := p.Default.(type) {
		case float64:
		case int:
			p.Default = float64(v)
		default:
			return fmt.Errorf("default %v is not a number", p.Default)
		}
	default:
		return fmt.Errorf("%s params cannot have a default", p.Type)
	}
	return nil
}
