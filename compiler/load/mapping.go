package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MappingExt is the extension of the mapping document that sits next to a
// template file, e.g. "entities.tt" -> "entities.mapping.json".
const MappingExt = "mapping.json"

// ErrInvalidMapping is matched by all errors returned for unreadable or
// malformed mapping documents.
var ErrInvalidMapping = errors.New("xrmgen: invalid mapping document")

// MappingError describes a mapping document that could not be used.
type MappingError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("xrmgen: invalid mapping document: %v", e.Cause)
	}
	return fmt.Sprintf("xrmgen: invalid mapping document %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrInvalidMapping.
func (e *MappingError) Is(target error) bool { return target == ErrInvalidMapping }

// EntityMapping holds the user overrides of one entity.
type EntityMapping struct {
	// CodeName replaces the generated code name of the entity verbatim.
	CodeName string `json:"codeName,omitempty"`
	// Attributes maps attribute logical names to custom code names.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// AttributeName returns the code name override of the given attribute.
func (m *EntityMapping) AttributeName(logicalName string) (string, bool) {
	if m == nil {
		return "", false
	}
	name, ok := m.Attributes[logicalName]
	return name, ok && name != ""
}

// Mapping is the override document keyed by entity logical name. A nil
// Mapping means that no document is available, while an empty non-nil
// Mapping is a document that selects nothing.
type Mapping map[string]*EntityMapping

// Names returns the entity names of the document in ascending order.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entity returns the overrides of the given entity, or nil.
func (m Mapping) Entity(logicalName string) *EntityMapping {
	if m == nil {
		return nil
	}
	return m[logicalName]
}

// ParseMapping decodes a mapping document. Blank input yields a nil Mapping.
func ParseMapping(data []byte) (Mapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &MappingError{Cause: err}
	}
	if m == nil {
		// The document was a JSON null.
		return nil, nil
	}
	for name := range m {
		if strings.TrimSpace(name) == "" {
			return nil, &MappingError{Cause: errors.New("empty entity name")}
		}
		if m[name] == nil {
			m[name] = &EntityMapping{}
		}
	}
	return m, nil
}

// ReadMapping reads the mapping document at path. A missing file is not an
// error and yields a nil Mapping.
func ReadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &MappingError{Path: path, Cause: err}
	}
	m, err := ParseMapping(data)
	if err != nil {
		var merr *MappingError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return m, nil
}

// MappingFile returns the mapping document path of the given template file.
func MappingFile(templatePath string) string {
	if templatePath == "" {
		return ""
	}
	ext := filepath.Ext(templatePath)
	return strings.TrimSuffix(templatePath, ext) + "." + MappingExt
}
