package load

import (
	"github.com/google/uuid"
)

// AttributeType is the metadata type name of an attribute as reported by
// the metadata service (e.g. "String", "Lookup", "Picklist").
type AttributeType string

// Attribute types reported by the metadata service.
const (
	TypeBigInt              AttributeType = "BigInt"
	TypeBoolean             AttributeType = "Boolean"
	TypeCustomer            AttributeType = "Customer"
	TypeDateTime            AttributeType = "DateTime"
	TypeDecimal             AttributeType = "Decimal"
	TypeDouble              AttributeType = "Double"
	TypeEntityName          AttributeType = "EntityName"
	TypeImage               AttributeType = "Image"
	TypeInteger             AttributeType = "Integer"
	TypeLookup              AttributeType = "Lookup"
	TypeManagedProperty     AttributeType = "ManagedProperty"
	TypeMemo                AttributeType = "Memo"
	TypeMoney               AttributeType = "Money"
	TypeMultiSelectPicklist AttributeType = "MultiSelectPicklist"
	TypeOwner               AttributeType = "Owner"
	TypePartyList           AttributeType = "PartyList"
	TypePicklist            AttributeType = "Picklist"
	TypeState               AttributeType = "State"
	TypeStatus              AttributeType = "Status"
	TypeString              AttributeType = "String"
	TypeUniqueidentifier    AttributeType = "Uniqueidentifier"
	TypeVirtual             AttributeType = "Virtual"
)

// HasOptions reports if attributes of this type carry an option set.
func (t AttributeType) HasOptions() bool {
	switch t {
	case TypePicklist, TypeState, TypeStatus, TypeMultiSelectPicklist:
		return true
	}
	return false
}

// IsReference reports if attributes of this type reference other entities.
func (t AttributeType) IsReference() bool {
	switch t {
	case TypeLookup, TypeCustomer, TypeOwner:
		return true
	}
	return false
}

// Entity is the raw metadata of one entity as returned by the metadata
// service. Records are treated as immutable once fetched.
type Entity struct {
	MetadataID           uuid.UUID       `json:"metadataId,omitempty" yaml:"metadataId,omitempty" msgpack:"metadataId,omitempty"`
	LogicalName          string          `json:"logicalName" yaml:"logicalName" msgpack:"logicalName"`
	SchemaName           string          `json:"schemaName,omitempty" yaml:"schemaName,omitempty" msgpack:"schemaName,omitempty"`
	DisplayName          string          `json:"displayName,omitempty" yaml:"displayName,omitempty" msgpack:"displayName,omitempty"`
	DisplayCollection    string          `json:"displayCollectionName,omitempty" yaml:"displayCollectionName,omitempty" msgpack:"displayCollectionName,omitempty"`
	Description          string          `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	ObjectTypeCode       int             `json:"objectTypeCode,omitempty" yaml:"objectTypeCode,omitempty" msgpack:"objectTypeCode,omitempty"`
	PrimaryIDAttribute   string          `json:"primaryIdAttribute,omitempty" yaml:"primaryIdAttribute,omitempty" msgpack:"primaryIdAttribute,omitempty"`
	PrimaryNameAttribute string          `json:"primaryNameAttribute,omitempty" yaml:"primaryNameAttribute,omitempty" msgpack:"primaryNameAttribute,omitempty"`
	IsActivity           bool            `json:"isActivity,omitempty" yaml:"isActivity,omitempty" msgpack:"isActivity,omitempty"`
	IsActivityParty      bool            `json:"isActivityParty,omitempty" yaml:"isActivityParty,omitempty" msgpack:"isActivityParty,omitempty"`
	IsCustomEntity       bool            `json:"isCustomEntity,omitempty" yaml:"isCustomEntity,omitempty" msgpack:"isCustomEntity,omitempty"`
	Attributes           []*Attribute    `json:"attributes,omitempty" yaml:"attributes,omitempty" msgpack:"attributes,omitempty"`
	OneToMany            []*Relationship `json:"oneToMany,omitempty" yaml:"oneToMany,omitempty" msgpack:"oneToMany,omitempty"`
	ManyToOne            []*Relationship `json:"manyToOne,omitempty" yaml:"manyToOne,omitempty" msgpack:"manyToOne,omitempty"`
	ManyToMany           []*Relationship `json:"manyToMany,omitempty" yaml:"manyToMany,omitempty" msgpack:"manyToMany,omitempty"`
}

// Attribute is the raw metadata of an entity attribute.
type Attribute struct {
	MetadataID    uuid.UUID     `json:"metadataId,omitempty" yaml:"metadataId,omitempty" msgpack:"metadataId,omitempty"`
	LogicalName   string        `json:"logicalName" yaml:"logicalName" msgpack:"logicalName"`
	SchemaName    string        `json:"schemaName,omitempty" yaml:"schemaName,omitempty" msgpack:"schemaName,omitempty"`
	DisplayName   string        `json:"displayName,omitempty" yaml:"displayName,omitempty" msgpack:"displayName,omitempty"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Type          AttributeType `json:"type" yaml:"type" msgpack:"type"`
	Targets       []string      `json:"targets,omitempty" yaml:"targets,omitempty" msgpack:"targets,omitempty"`
	OptionSet     *OptionSet    `json:"optionSet,omitempty" yaml:"optionSet,omitempty" msgpack:"optionSet,omitempty"`
	MaxLength     *int          `json:"maxLength,omitempty" yaml:"maxLength,omitempty" msgpack:"maxLength,omitempty"`
	RequiredLevel string        `json:"requiredLevel,omitempty" yaml:"requiredLevel,omitempty" msgpack:"requiredLevel,omitempty"`
	AttributeOf   string        `json:"attributeOf,omitempty" yaml:"attributeOf,omitempty" msgpack:"attributeOf,omitempty"`
	IsPrimaryID   bool          `json:"isPrimaryId,omitempty" yaml:"isPrimaryId,omitempty" msgpack:"isPrimaryId,omitempty"`
	IsPrimaryName bool          `json:"isPrimaryName,omitempty" yaml:"isPrimaryName,omitempty" msgpack:"isPrimaryName,omitempty"`
	ReadOnly      bool          `json:"readOnly,omitempty" yaml:"readOnly,omitempty" msgpack:"readOnly,omitempty"`
}

// OptionSet holds the options of a picklist-like attribute.
type OptionSet struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	DisplayName string    `json:"displayName,omitempty" yaml:"displayName,omitempty" msgpack:"displayName,omitempty"`
	IsGlobal    bool      `json:"isGlobal,omitempty" yaml:"isGlobal,omitempty" msgpack:"isGlobal,omitempty"`
	Options     []*Option `json:"options,omitempty" yaml:"options,omitempty" msgpack:"options,omitempty"`
}

// Option is one value of an option set.
type Option struct {
	Value int    `json:"value" yaml:"value" msgpack:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" msgpack:"label,omitempty"`
}

// Relationship is the raw metadata of a relationship. One-to-many and
// many-to-one relationships use the Referenced/Referencing pairs,
// many-to-many relationships use Entity1/Entity2 and the intersect entity.
type Relationship struct {
	SchemaName           string `json:"schemaName" yaml:"schemaName" msgpack:"schemaName"`
	ReferencedEntity     string `json:"referencedEntity,omitempty" yaml:"referencedEntity,omitempty" msgpack:"referencedEntity,omitempty"`
	ReferencedAttribute  string `json:"referencedAttribute,omitempty" yaml:"referencedAttribute,omitempty" msgpack:"referencedAttribute,omitempty"`
	ReferencingEntity    string `json:"referencingEntity,omitempty" yaml:"referencingEntity,omitempty" msgpack:"referencingEntity,omitempty"`
	ReferencingAttribute string `json:"referencingAttribute,omitempty" yaml:"referencingAttribute,omitempty" msgpack:"referencingAttribute,omitempty"`
	Entity1LogicalName   string `json:"entity1LogicalName,omitempty" yaml:"entity1LogicalName,omitempty" msgpack:"entity1LogicalName,omitempty"`
	Entity2LogicalName   string `json:"entity2LogicalName,omitempty" yaml:"entity2LogicalName,omitempty" msgpack:"entity2LogicalName,omitempty"`
	IntersectEntityName  string `json:"intersectEntityName,omitempty" yaml:"intersectEntityName,omitempty" msgpack:"intersectEntityName,omitempty"`
}

// ManyToManyTarget returns the entity on the other side of a many-to-many
// relationship owned by the given entity. Self-referencing relationships
// return the owner itself.
func (r *Relationship) ManyToManyTarget(owner string) string {
	if r.Entity1LogicalName == owner {
		return r.Entity2LogicalName
	}
	return r.Entity1LogicalName
}

// Names returns the logical names of the given records, in order. Nil
// records are skipped.
func Names(records []*Entity) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		names = append(names, r.LogicalName)
	}
	return names
}
