package gen

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/xrmgen/compiler/load"
)

// fetchKey is the singleflight key of the metadata fetch. A Mapper has a
// single cache, so all its fetches share one key.
const fetchKey = "metadata"

// Mapper builds Contexts from a metadata source. The raw records fetched by
// the first run are cached for the lifetime of the Mapper and reused by the
// following runs; concurrent runs share a single in-flight fetch.
//
// A Mapper is safe for concurrent use.
type Mapper struct {
	src   load.Source
	group singleflight.Group

	mu    sync.RWMutex
	cfg   Config
	cache *fetched
	// generation is bumped by Refresh. A fetch started in an older
	// generation does not replace the cache.
	generation uint64
}

// fetched holds the records of one fetch and the names it asked for.
type fetched struct {
	records []*load.Entity
	names   map[string]struct{}
	all     bool
}

// covers reports if the fetch asked for all the given names.
func (f *fetched) covers(names []string) bool {
	if f == nil {
		return false
	}
	if f.all {
		return true
	}
	for _, n := range names {
		if _, ok := f.names[n]; !ok {
			return false
		}
	}
	return true
}

// NewMapper returns a Mapper reading from src.
func NewMapper(src load.Source, opts ...Option) (*Mapper, error) {
	if src == nil {
		return nil, NewConfigError("Source", nil, "metadata source cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Mapper{src: src, cfg: cfg}, nil
}

// Config returns the current configuration.
func (m *Mapper) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Reconfigure replaces the configuration with a copy that has opts applied.
// Cached records are kept and reused by runs whose names they cover.
func (m *Mapper) Reconfigure(opts ...Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, err := m.cfg.With(opts...)
	if err != nil {
		return err
	}
	m.cfg = cfg
	return nil
}

// Refresh drops the cached records. The next run fetches again.
func (m *Mapper) Refresh() {
	m.mu.Lock()
	m.cache = nil
	m.generation++
	m.group.Forget(fetchKey)
	m.mu.Unlock()
}

// Records returns the raw records fetched for the current selection. The
// result may hold more records than selected, e.g. after a fetch of all
// entities.
func (m *Mapper) Records(ctx context.Context) ([]*load.Entity, error) {
	cfg := m.Config()
	cfg.Mapping = m.mapping(cfg)
	return m.records(ctx, cfg, Select(cfg))
}

// CreateContext runs the pipeline: it computes the selection, fetches (or
// reuses) the raw records, maps them, resolves the relationships, collects
// the global enums, sorts everything and assembles the Context.
//
// Errors of the metadata source are returned unchanged.
func (m *Mapper) CreateContext(ctx context.Context) (*Context, error) {
	cfg := m.Config()
	cfg.Mapping = m.mapping(cfg)
	sel := Select(cfg)
	records, err := m.records(ctx, cfg, sel)
	if err != nil {
		return nil, err
	}
	selected := sel.Filter(records)
	cfg.Logger.Info("selected entities metadata", slog.Int("count", len(selected)))

	entities, err := MapEntities(selected, cfg.Mapping)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if err := ValidCodeName(e.Name); err != nil {
			cfg.Logger.Warn("entity code name is not an identifier", slog.String("entity", e.LogicalName), slog.Any("error", err))
		}
	}
	entities = Resolve(entities)
	enums := GlobalEnums(entities)
	SortEntities(entities)
	SortEnums(enums)
	return Assemble(cfg.Namespace, entities, enums), nil
}

// mapping returns the override document of a run. An explicit document wins
// over the mapping file; an unusable file degrades to no overrides.
func (m *Mapper) mapping(cfg Config) load.Mapping {
	if cfg.Mapping != nil || cfg.MappingFile == "" {
		return cfg.Mapping
	}
	doc, err := load.ReadMapping(cfg.MappingFile)
	if err != nil {
		cfg.Logger.Warn("mapping document ignored", slog.String("path", cfg.MappingFile), slog.Any("error", err))
		return nil
	}
	return doc
}

func (m *Mapper) records(ctx context.Context, cfg Config, sel Selection) ([]*load.Entity, error) {
	names := sel.FetchNames()
	for {
		m.mu.RLock()
		cached, generation := m.cache, m.generation
		m.mu.RUnlock()
		if cached.covers(names) {
			return cached.records, nil
		}
		v, err, _ := m.group.Do(fetchKey, func() (any, error) {
			return m.fetch(ctx, cfg, generation, names, sel.Len() > cfg.FetchAllThreshold)
		})
		if err != nil {
			return nil, err
		}
		// The call may have joined a fetch started for other names.
		if f := v.(*fetched); f.covers(names) {
			return f.records, nil
		}
	}
}

func (m *Mapper) fetch(ctx context.Context, cfg Config, generation uint64, want []string, all bool) (*fetched, error) {
	cfg.Logger.Info("gathering metadata, this may take a few minutes", slog.Int("entities", len(want)), slog.Bool("all", all))
	var (
		records []*load.Entity
		err     error
	)
	if all {
		records, err = m.src.AllEntities(ctx, cfg.IncludeUnpublished)
	} else {
		records, err = m.src.Entities(ctx, want, cfg.IncludeUnpublished)
	}
	if err != nil {
		return nil, err
	}
	cfg.Logger.Info("entities metadata retrieved", slog.Int("count", len(records)))
	f := &fetched{records: records, names: names(want...), all: all}
	m.mu.Lock()
	if m.generation == generation {
		m.cache = f
	} else {
		cfg.Logger.Debug("metadata refreshed during fetch, result not cached")
	}
	m.mu.Unlock()
	return f, nil
}
