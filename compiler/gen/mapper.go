package gen

import (
	"fmt"

	"github.com/syssam/xrmgen/compiler/load"
)

// NewEntity maps one raw record into an Entity, applying the override of the
// entity when one is given. The mapping is local to the record: relationships
// are returned as unresolved stubs and lookup fields keep the logical name of
// their target.
func NewEntity(rec *load.Entity, override *load.EntityMapping) (*Entity, error) {
	if rec == nil {
		return nil, NewSchemaError("", "", "nil entity record")
	}
	if rec.LogicalName == "" {
		return nil, NewSchemaError("", "", "entity logical name cannot be empty")
	}
	e := &Entity{
		LogicalName:          rec.LogicalName,
		SchemaName:           rec.SchemaName,
		DisplayName:          rec.DisplayName,
		DisplayCollection:    rec.DisplayCollection,
		Description:          rec.Description,
		Name:                 codeName(rec.DisplayName, rec.SchemaName, rec.LogicalName),
		MetadataID:           rec.MetadataID,
		ObjectTypeCode:       rec.ObjectTypeCode,
		PrimaryIDAttribute:   rec.PrimaryIDAttribute,
		PrimaryNameAttribute: rec.PrimaryNameAttribute,
		IsActivity:           rec.IsActivity,
		IsActivityParty:      rec.IsActivityParty,
		IsCustom:             rec.IsCustomEntity,
	}
	if e.DisplayName == "" {
		e.DisplayName = rec.LogicalName
	}
	if override != nil && override.CodeName != "" {
		e.Name = override.CodeName
	}
	if err := e.addFields(rec.Attributes, override); err != nil {
		return nil, err
	}
	e.OneToMany = newRelationships(e.LogicalName, OneToMany, rec.OneToMany)
	e.ManyToOne = newRelationships(e.LogicalName, ManyToOne, rec.ManyToOne)
	e.ManyToMany = newRelationships(e.LogicalName, ManyToMany, rec.ManyToMany)
	return e, nil
}

// addFields maps the attributes of the record. Overridden names are applied
// verbatim and reserved first, so derived names never steal them.
func (e *Entity) addFields(attrs []*load.Attribute, override *load.EntityMapping) error {
	seen := make(map[string]struct{}, len(attrs))
	used := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a == nil || a.AttributeOf != "" {
			continue
		}
		if a.LogicalName == "" {
			return NewSchemaError(e.LogicalName, "", "attribute logical name cannot be empty")
		}
		if _, ok := seen[a.LogicalName]; ok {
			return NewSchemaError(e.LogicalName, a.LogicalName, "duplicate attribute logical name")
		}
		seen[a.LogicalName] = struct{}{}
		if name, ok := override.AttributeName(a.LogicalName); ok {
			used[name] = struct{}{}
		}
	}
	for _, a := range attrs {
		if a == nil || a.AttributeOf != "" {
			continue
		}
		name, ok := override.AttributeName(a.LogicalName)
		if !ok {
			name = uniqueName(codeName(a.DisplayName, a.SchemaName, a.LogicalName), used)
		}
		f := newField(e.Name, a, name)
		if f.DisplayName == "" {
			f.DisplayName = a.LogicalName
		}
		e.Fields = append(e.Fields, f)
		if f.Enum != nil {
			e.Enums = append(e.Enums, f.Enum)
		}
	}
	return nil
}

// MapEntities maps the records in order. Logical names must be unique.
func MapEntities(records []*load.Entity, mapping load.Mapping) ([]*Entity, error) {
	entities := make([]*Entity, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		e, err := NewEntity(rec, mapping.Entity(logicalName(rec)))
		if err != nil {
			return nil, fmt.Errorf("map record %d: %w", i, err)
		}
		if _, ok := seen[e.LogicalName]; ok {
			return nil, NewSchemaError(e.LogicalName, "", "duplicate entity logical name")
		}
		seen[e.LogicalName] = struct{}{}
		entities = append(entities, e)
	}
	return entities, nil
}

func logicalName(rec *load.Entity) string {
	if rec == nil {
		return ""
	}
	return rec.LogicalName
}
