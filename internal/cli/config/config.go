package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/xrmgen/compiler/gen"
	"github.com/syssam/xrmgen/compiler/load"
)

// Output formats of the generate command.
const (
	FormatTemplate = "template"
	FormatGo       = "go"
	FormatGraphQL  = "graphql"
)

// DefaultEntities is the live selection used when neither a mapping
// document nor an entity list is configured.
const DefaultEntities = "account,contact,lead,opportunity,systemuser"

// Config represents the xrmgen configuration
type Config struct {
	Namespace          string `mapstructure:"namespace"`
	Entities           string `mapstructure:"entities"`
	IncludeNonStandard bool   `mapstructure:"include_non_standard"`
	IncludeUnpublished bool   `mapstructure:"include_unpublished"`
	FetchAllThreshold  int    `mapstructure:"fetch_all_threshold"`

	// Source is a metadata dump (.json, .yaml or .msgpack).
	Source string `mapstructure:"source"`
	// Mapping is the override document. When empty it is looked up next
	// to the template.
	Mapping  string `mapstructure:"mapping"`
	Template string `mapstructure:"template"`
	Output   string `mapstructure:"output"`
	Format   string `mapstructure:"format"`
	Package  string `mapstructure:"package"`
	Workers  int    `mapstructure:"workers"`
	Verbose  bool   `mapstructure:"verbose"`

	// GQLGen is a gqlgen.yml updated by the graphql format to bind the
	// schema to the Go types generated into the Models import path.
	GQLGen string `mapstructure:"gqlgen"`
	Models string `mapstructure:"models"`
}

// Load reads xrmgen.yaml from the working directory (or the file given by
// path), the XRMGEN_* environment and the changed flags of fs whose names
// match a config key with dashes for underscores. A missing xrmgen.yaml is
// not an error.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("xrmgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("XRMGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namespace", "Xrm")
	v.SetDefault("entities", DefaultEntities)
	v.SetDefault("include_non_standard", false)
	v.SetDefault("include_unpublished", false)
	v.SetDefault("fetch_all_threshold", load.FetchAllThreshold)
	v.SetDefault("source", "metadata.json")
	v.SetDefault("mapping", "")
	v.SetDefault("template", "")
	v.SetDefault("output", "xrm")
	v.SetDefault("format", FormatGo)
	v.SetDefault("package", "")
	v.SetDefault("workers", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("gqlgen", "")
	v.SetDefault("models", "")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	keys := make(map[string]bool)
	for _, k := range v.AllKeys() {
		keys[k] = true
	}
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if keys[key] && err == nil {
			err = v.BindPFlag(key, f)
		}
	})
	return err
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the generator cannot run with.
func (c *Config) Validate() error {
	if !slices.Contains([]string{FormatTemplate, FormatGo, FormatGraphQL}, c.Format) {
		return fmt.Errorf("format must be one of %s, %s or %s, got: %q", FormatTemplate, FormatGo, FormatGraphQL, c.Format)
	}
	if c.Format == FormatTemplate && c.Template == "" {
		return errors.New("template is required for the template format")
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.FetchAllThreshold <= 0 {
		return fmt.Errorf("fetch_all_threshold must be positive, got: %d", c.FetchAllThreshold)
	}
	if c.GQLGen != "" && c.Models == "" {
		return errors.New("models is required to update the gqlgen config")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got: %d", c.Workers)
	}
	return nil
}

// MappingPath returns the override document path: the configured one, or
// the conventional file next to the template.
func (c *Config) MappingPath() string {
	if c.Mapping != "" {
		return c.Mapping
	}
	if c.Template != "" {
		return load.MappingFile(c.Template)
	}
	return ""
}

// PackageName returns the Go package of generated code.
func (c *Config) PackageName() string {
	if c.Package != "" {
		return c.Package
	}
	return filepath.Base(c.Output)
}

// Options converts the configuration into mapper options.
func (c *Config) Options() []gen.Option {
	opts := []gen.Option{
		gen.WithNamespace(c.Namespace),
		gen.WithEntityList(c.Entities),
		gen.WithIncludeNonStandard(c.IncludeNonStandard),
		gen.WithIncludeUnpublished(c.IncludeUnpublished),
		gen.WithFetchAllThreshold(c.FetchAllThreshold),
	}
	if path := c.MappingPath(); path != "" {
		opts = append(opts, gen.WithMappingFile(path))
	}
	return opts
}
