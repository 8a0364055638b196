package gen

import (
	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"github.com/syssam/xrmgen/compiler/load"
)

// The following types and their exported methods are used by the renderers
// to generate the assets.
type (
	// Entity is the normalized, render-ready representation of one entity.
	// Entities are built once per mapping run and never updated after the
	// Context was assembled.
	Entity struct {
		// LogicalName is the unique key of the entity in a Context.
		LogicalName string
		// SchemaName is the schema name reported by the metadata service.
		SchemaName string
		// DisplayName is the user facing name. Used for ordering.
		DisplayName string
		// DisplayCollection is the user facing plural name.
		DisplayCollection string
		// Description of the entity, if any.
		Description string
		// Name holds the code name of the entity: the override code name, or
		// the identifier-safe transform of the display name.
		Name string
		// MetadataID is the id of the entity metadata.
		MetadataID uuid.UUID
		// ObjectTypeCode of the entity.
		ObjectTypeCode int
		// PrimaryIDAttribute and PrimaryNameAttribute are logical names of
		// the primary attributes.
		PrimaryIDAttribute   string
		PrimaryNameAttribute string
		// IsActivity reports if the entity is an activity (email, task, ...).
		IsActivity bool
		// IsActivityParty reports if the entity is the activity party entity.
		IsActivityParty bool
		// IsCustom reports if the entity was created by a customization.
		IsCustom bool
		// Fields holds the attributes of the entity.
		Fields []*Field
		// OneToMany, ManyToOne and ManyToMany hold the relationships of the
		// entity by kind.
		OneToMany  []*Relationship
		ManyToOne  []*Relationship
		ManyToMany []*Relationship
		// Enums holds the option sets of the entity, local and global.
		Enums []*Enum
	}

	// Field holds the information of an entity attribute.
	Field struct {
		// LogicalName is the durable key of the attribute. Overrides never
		// change it.
		LogicalName string
		SchemaName  string
		DisplayName string
		Description string
		// Name is the code name of the field.
		Name string
		// Type is the resolved type tag of the field.
		Type FieldType
		// AttributeType is the raw type reported by the metadata service.
		AttributeType load.AttributeType
		// LookupSingleType is set for references with exactly one target.
		// It holds the logical name of the target until resolution rewrites
		// it to the code name of the target entity.
		LookupSingleType string
		// Targets lists the logical names of the entities a reference points to.
		Targets []string
		// Enum is the option set of picklist-like fields.
		Enum *Enum
		// MaxLength of string fields. Zero means no limit was reported.
		MaxLength int
		// Required reports a system or application required attribute.
		Required bool
		// ReadOnly reports an attribute that cannot be written.
		ReadOnly      bool
		IsPrimaryID   bool
		IsPrimaryName bool
	}

	// Relationship of a graph between two entities. The three kinds share
	// this shape.
	Relationship struct {
		// Kind of the relationship.
		Kind RelationshipKind
		// LogicalName is the schema name of the relationship.
		LogicalName string
		// Name is the code name of the relationship.
		Name string
		// Target is the logical name of the entity on the other side.
		Target string
		// Entity is the resolved target. It is nil until the relationship
		// was resolved, and always set in an assembled Context.
		Entity *Entity
		// ReferencedAttribute and ReferencingAttribute describe the lookup
		// of one-to-many and many-to-one relationships.
		ReferencedAttribute  string
		ReferencingAttribute string
		// IntersectEntity is the intersect entity of many-to-many relationships.
		IntersectEntity string
	}

	// Enum is a normalized option set.
	Enum struct {
		// LogicalName is the logical name of the attribute the option set was
		// found on.
		LogicalName string
		DisplayName string
		// Name holds the code name of the enum.
		Name string
		// IsGlobal marks option sets shared across entities.
		IsGlobal bool
		// GlobalName is the deduplication key of global option sets.
		GlobalName string
		// Multi marks multi-select option sets.
		Multi bool
		// Options holds the values in the order reported by the service.
		Options []*EnumOption
	}

	// EnumOption is one value of an Enum.
	EnumOption struct {
		Value int
		Label string
		// Name is the code name of the option, unique within its enum.
		Name string
	}
)

// RelationshipKind is the kind of a relationship.
type RelationshipKind uint8

// Relationship kinds.
const (
	OneToMany RelationshipKind = iota + 1
	ManyToOne
	ManyToMany
)

// String returns the relationship kind name.
func (k RelationshipKind) String() string {
	switch k {
	case OneToMany:
		return "one_to_many"
	case ManyToOne:
		return "many_to_one"
	case ManyToMany:
		return "many_to_many"
	default:
		return "invalid"
	}
}

// =============================================================================
// Entity methods
// =============================================================================

// Field returns the field with the given logical name, or nil.
func (e *Entity) Field(logicalName string) *Field {
	for _, f := range e.Fields {
		if f.LogicalName == logicalName {
			return f
		}
	}
	return nil
}

// PrimaryID returns the primary id field of the entity, or nil.
func (e *Entity) PrimaryID() *Field {
	for _, f := range e.Fields {
		if f.IsPrimaryID || (e.PrimaryIDAttribute != "" && f.LogicalName == e.PrimaryIDAttribute) {
			return f
		}
	}
	return nil
}

// PluralName returns the code name used for collections of the entity.
func (e *Entity) PluralName() string {
	if name := CodeName(e.DisplayCollection); name != "" {
		return name
	}
	return inflect.Pluralize(e.Name)
}

// Relationships returns the relationships of the given kind.
func (e *Entity) Relationships(kind RelationshipKind) []*Relationship {
	switch kind {
	case OneToMany:
		return e.OneToMany
	case ManyToOne:
		return e.ManyToOne
	case ManyToMany:
		return e.ManyToMany
	default:
		return nil
	}
}

// HasEnums reports if the entity has option set fields.
func (e *Entity) HasEnums() bool { return len(e.Enums) > 0 }

// =============================================================================
// Enum methods
// =============================================================================

// Option returns the option with the given value, or nil.
func (e *Enum) Option(value int) *EnumOption {
	for _, o := range e.Options {
		if o.Value == value {
			return o
		}
	}
	return nil
}
