package load

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// FetchAllThreshold is the selection size above which all entities are
// fetched in one round trip instead of one request per entity.
const FetchAllThreshold = 20

// Source is the metadata service. Implementations own connectivity,
// authentication and any retry policy; their errors are reported to the
// caller unchanged.
type Source interface {
	// Entities returns the metadata of the given entities. Unknown names
	// may be skipped.
	Entities(ctx context.Context, names []string, includeUnpublished bool) ([]*Entity, error)
	// AllEntities returns the metadata of every entity of the organization.
	AllEntities(ctx context.Context, includeUnpublished bool) ([]*Entity, error)
}

// Records is an in-memory Source over already fetched records.
type Records []*Entity

// Entities implements Source.
func (r Records) Entities(_ context.Context, names []string, _ bool) ([]*Entity, error) {
	return filter(r, names), nil
}

// AllEntities implements Source.
func (r Records) AllEntities(context.Context, bool) ([]*Entity, error) {
	return append([]*Entity(nil), r...), nil
}

// Dump is the on-disk layout of a metadata dump.
type Dump struct {
	Entities []*Entity `json:"entities" yaml:"entities" msgpack:"entities"`
}

// FileSource reads metadata from a dump file. The format is picked by
// extension: .json, .yaml/.yml or .msgpack/.mp. Dumps hold the published
// view of the metadata, so the unpublished flag is ignored.
type FileSource struct {
	Path string
}

// NewFileSource returns a Source reading the dump at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Entities implements Source.
func (s *FileSource) Entities(ctx context.Context, names []string, includeUnpublished bool) ([]*Entity, error) {
	all, err := s.AllEntities(ctx, includeUnpublished)
	if err != nil {
		return nil, err
	}
	return filter(all, names), nil
}

// AllEntities implements Source.
func (s *FileSource) AllEntities(ctx context.Context, _ bool) ([]*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read metadata dump: %w", err)
	}
	dump, err := decodeDump(s.Path, data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata dump %s: %w", s.Path, err)
	}
	// null entries of hand-edited dumps carry no record.
	return slices.DeleteFunc(dump.Entities, func(r *Entity) bool { return r == nil }), nil
}

// WriteSnapshot stores the records at path in the msgpack dump format.
func WriteSnapshot(path string, records []*Entity) error {
	data, err := msgpack.Marshal(&Dump{Entities: records})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func decodeDump(path string, data []byte) (*Dump, error) {
	dump := &Dump{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data = bytes.TrimSpace(data)
		// A bare array of records is accepted as well.
		if len(data) > 0 && data[0] == '[' {
			return dump, json.Unmarshal(data, &dump.Entities)
		}
		return dump, json.Unmarshal(data, dump)
	case ".yaml", ".yml":
		return dump, yaml.Unmarshal(data, dump)
	case ".msgpack", ".mp":
		return dump, msgpack.Unmarshal(data, dump)
	default:
		return nil, fmt.Errorf("unsupported dump format %q", ext)
	}
}

// filter returns the records named in names, in record order.
func filter(records []*Entity, names []string) []*Entity {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []*Entity
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, ok := want[r.LogicalName]; ok {
			out = append(out, r)
		}
	}
	return out
}
