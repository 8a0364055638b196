package gen

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/syssam/xrmgen/compiler/load"
)

// Config is the immutable input of a mapping run. It is built once from
// options and never updated in place; Mapper.Reconfigure swaps it for a
// new value.
type Config struct {
	// Namespace is attached to the Context for the renderer.
	Namespace string
	// Entities is the live selection of entity logical names.
	Entities []string
	// IncludeNonStandard keeps the noisy system entities (see NonStandard).
	IncludeNonStandard bool
	// IncludeUnpublished asks the metadata source for unpublished changes.
	IncludeUnpublished bool
	// Mapping is an explicit override document. It takes precedence over
	// MappingFile.
	Mapping load.Mapping
	// MappingFile is the path of the override document, read on every run.
	MappingFile string
	// FetchAllThreshold is the selection size above which all entities
	// are fetched at once.
	FetchAllThreshold int
	// Logger receives the progress messages of the mapper.
	Logger *slog.Logger
}

// Option configures a mapping run.
type Option func(*Config) error

// WithNamespace sets the namespace handed to the renderer.
func WithNamespace(ns string) Option {
	return func(c *Config) error {
		c.Namespace = strings.TrimSpace(ns)
		return nil
	}
}

// WithEntities sets the live selection. Names are trimmed, blank names are
// dropped and duplicates keep their first position.
func WithEntities(names ...string) Option {
	return func(c *Config) error {
		c.Entities = cleanNames(names)
		return nil
	}
}

// WithEntityList sets the live selection from a comma separated list,
// e.g. "account, contact,lead".
func WithEntityList(list string) Option {
	return WithEntities(ParseEntityList(list)...)
}

// WithIncludeNonStandard controls whether non-standard entities are kept.
func WithIncludeNonStandard(include bool) Option {
	return func(c *Config) error {
		c.IncludeNonStandard = include
		return nil
	}
}

// WithIncludeUnpublished controls whether unpublished metadata is fetched.
func WithIncludeUnpublished(include bool) Option {
	return func(c *Config) error {
		c.IncludeUnpublished = include
		return nil
	}
}

// WithMapping sets an explicit override document. A nil document removes
// a previously configured one.
func WithMapping(m load.Mapping) Option {
	return func(c *Config) error {
		c.Mapping = m
		return nil
	}
}

// WithMappingFile sets the path of the override document.
func WithMappingFile(path string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(path) == "" {
			return NewConfigError("MappingFile", nil, "path cannot be empty")
		}
		c.MappingFile = path
		return nil
	}
}

// WithFetchAllThreshold sets the selection size above which all entities
// are fetched in a single request.
func WithFetchAllThreshold(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("FetchAllThreshold", n, "must be positive")
		}
		c.FetchAllThreshold = n
		return nil
	}
}

// WithLogger sets the logger of the mapper.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (Config, error) {
	c := Config{
		FetchAllThreshold: load.FetchAllThreshold,
		Logger:            slog.Default(),
	}
	if err := c.Apply(opts...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// With returns a copy of c with the options applied. c is left untouched.
func (c Config) With(opts ...Option) (Config, error) {
	c.Entities = append([]string(nil), c.Entities...)
	if err := c.Apply(opts...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ParseEntityList splits a comma separated entity list.
func ParseEntityList(list string) []string {
	return cleanNames(strings.Split(list, ","))
}

func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
