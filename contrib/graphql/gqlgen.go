package graphql

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/xrmgen/compiler/gen"
)

// GQLGenConfig is the part of gqlgen.yml that binds the generated schema
// to the generated Go types. Unknown keys of an existing file are dropped
// on save.
type GQLGenConfig struct {
	SchemaFilename StringList              `yaml:"schema,omitempty"`
	Exec           PackageConfig           `yaml:"exec,omitempty"`
	Model          PackageConfig           `yaml:"model,omitempty"`
	Autobind       []string                `yaml:"autobind,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`
}

// PackageConfig names a generated file and its package.
type PackageConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
}

// TypeMapEntry binds one GraphQL type to Go models.
type TypeMapEntry struct {
	Model StringList `yaml:"model,omitempty"`
}

// StringList is a YAML value that is either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig reads a gqlgen.yml file. A missing file yields an empty config.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	cfg := &GQLGenConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse gqlgen config: %w", err)
		}
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return cfg, nil
}

// SaveGQLGenConfig writes cfg to path, creating the directory if needed.
func SaveGQLGenConfig(path string, cfg *GQLGenConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath adds a schema path if not already present.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// AddAutobind adds a package to the autobind list if not already present.
func (c *GQLGenConfig) AddAutobind(pkg string) {
	if !slices.Contains(c.Autobind, pkg) {
		c.Autobind = append(c.Autobind, pkg)
	}
}

// SetModel binds a GraphQL type to a Go model.
func (c *GQLGenConfig) SetModel(typeName, model string) {
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, model) {
		entry.Model = append(entry.Model, model)
	}
	c.Models[typeName] = entry
}

// Bind registers the schema path and binds the objects of doc to the
// early-bound types generated into goPkg. Objects are matched to entities
// through their @logicalName directive, since GraphQL names may differ
// from Go names after sanitizing.
func (c *GQLGenConfig) Bind(ctx *gen.Context, doc *ast.SchemaDocument, goPkg, schemaPath string) {
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	if goPkg == "" {
		return
	}
	c.AddAutobind(goPkg)
	c.SetModel("ID", "github.com/99designs/gqlgen/graphql.UUID")
	c.SetModel(ScalarDateTime, "github.com/99designs/gqlgen/graphql.Time")
	c.SetModel(ScalarLong, "github.com/99designs/gqlgen/graphql.Int64")
	c.SetModel(ReferenceType, goPkg+".EntityReference")
	for _, def := range doc.Definitions {
		if def.Kind != ast.Object {
			continue
		}
		d := def.Directives.ForName(LogicalNameDirective)
		if d == nil {
			continue
		}
		arg := d.Arguments.ForName("name")
		if arg == nil || arg.Value == nil {
			continue
		}
		if e, err := ctx.Entity(arg.Value.Raw); err == nil {
			c.SetModel(def.Name, goPkg+"."+e.Name)
		}
	}
}
