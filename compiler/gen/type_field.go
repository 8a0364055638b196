package gen

import (
	"github.com/syssam/xrmgen/compiler/load"
)

// FieldType is the resolved type tag of a field.
type FieldType uint8

// Field types.
const (
	FieldInvalid FieldType = iota
	FieldString
	FieldInt
	FieldBigInt
	FieldDouble
	FieldDecimal
	FieldMoney
	FieldBool
	FieldDateTime
	FieldGUID
	FieldLookup
	FieldOptionSet
	FieldMultiOptionSet
	FieldPartyList
	FieldImage
	FieldEntityName
	FieldVirtual
	FieldManagedProperty
	endFieldTypes
)

var fieldTypeNames = [...]string{
	FieldInvalid:         "invalid",
	FieldString:          "string",
	FieldInt:             "int",
	FieldBigInt:          "bigint",
	FieldDouble:          "double",
	FieldDecimal:         "decimal",
	FieldMoney:           "money",
	FieldBool:            "bool",
	FieldDateTime:        "datetime",
	FieldGUID:            "guid",
	FieldLookup:          "lookup",
	FieldOptionSet:       "optionset",
	FieldMultiOptionSet:  "multioptionset",
	FieldPartyList:       "partylist",
	FieldImage:           "image",
	FieldEntityName:      "entityname",
	FieldVirtual:         "virtual",
	FieldManagedProperty: "managedproperty",
}

// String returns the string representation of a type.
func (t FieldType) String() string {
	if t < endFieldTypes {
		return fieldTypeNames[t]
	}
	return fieldTypeNames[FieldInvalid]
}

// Valid reports if the given type is known.
func (t FieldType) Valid() bool {
	return t > FieldInvalid && t < endFieldTypes
}

// attributeTypes maps raw attribute types to field types. Types missing from
// the table are treated as strings.
var attributeTypes = map[load.AttributeType]FieldType{
	load.TypeBigInt:              FieldBigInt,
	load.TypeBoolean:             FieldBool,
	load.TypeCustomer:            FieldLookup,
	load.TypeDateTime:            FieldDateTime,
	load.TypeDecimal:             FieldDecimal,
	load.TypeDouble:              FieldDouble,
	load.TypeEntityName:          FieldEntityName,
	load.TypeImage:               FieldImage,
	load.TypeInteger:             FieldInt,
	load.TypeLookup:              FieldLookup,
	load.TypeManagedProperty:     FieldManagedProperty,
	load.TypeMemo:                FieldString,
	load.TypeMoney:               FieldMoney,
	load.TypeMultiSelectPicklist: FieldMultiOptionSet,
	load.TypeOwner:               FieldLookup,
	load.TypePartyList:           FieldPartyList,
	load.TypePicklist:            FieldOptionSet,
	load.TypeState:               FieldOptionSet,
	load.TypeStatus:              FieldOptionSet,
	load.TypeString:              FieldString,
	load.TypeUniqueidentifier:    FieldGUID,
	load.TypeVirtual:             FieldVirtual,
}

func fieldType(t load.AttributeType) FieldType {
	if ft, ok := attributeTypes[t]; ok {
		return ft
	}
	return FieldString
}

// =============================================================================
// Field methods
// =============================================================================

// Constant returns the constant name of the field.
func (f Field) Constant() string { return "Field" + f.Name }

// IsLookup reports if the field references other entities.
func (f Field) IsLookup() bool { return f.Type == FieldLookup }

// IsEnum reports if the field holds an option set.
func (f Field) IsEnum() bool { return f.Enum != nil }

// Polymorphic reports if the field references more than one entity
// (e.g. customer lookups pointing to account or contact).
func (f Field) Polymorphic() bool { return f.IsLookup() && len(f.Targets) > 1 }

// =============================================================================
// Construction
// =============================================================================

// newField builds the field of an attribute. name is the code name, already
// made unique within the entity.
func newField(entity string, attr *load.Attribute, name string) *Field {
	f := &Field{
		LogicalName:   attr.LogicalName,
		SchemaName:    attr.SchemaName,
		DisplayName:   attr.DisplayName,
		Description:   attr.Description,
		Name:          name,
		Type:          fieldType(attr.Type),
		AttributeType: attr.Type,
		Targets:       append([]string(nil), attr.Targets...),
		Required:      attr.RequiredLevel == "SystemRequired" || attr.RequiredLevel == "ApplicationRequired",
		ReadOnly:      attr.ReadOnly,
		IsPrimaryID:   attr.IsPrimaryID,
		IsPrimaryName: attr.IsPrimaryName,
	}
	if attr.MaxLength != nil && *attr.MaxLength > 0 {
		f.MaxLength = *attr.MaxLength
	}
	if attr.Type.IsReference() && len(attr.Targets) == 1 {
		f.LookupSingleType = attr.Targets[0]
	}
	if attr.Type.HasOptions() && attr.OptionSet != nil {
		f.Enum = newEnum(entity, attr, name)
	}
	return f
}

// newEnum builds the enum of a picklist-like attribute. Local enums are
// named after their owner and field, global ones after the option set.
func newEnum(entity string, attr *load.Attribute, field string) *Enum {
	set := attr.OptionSet
	e := &Enum{
		LogicalName: attr.LogicalName,
		DisplayName: attr.DisplayName,
		Name:        entity + field,
		Multi:       attr.Type == load.TypeMultiSelectPicklist,
		Options:     make([]*EnumOption, 0, len(set.Options)),
	}
	if set.IsGlobal && set.Name != "" {
		e.IsGlobal = true
		e.GlobalName = set.Name
		e.Name = codeName(set.DisplayName, set.Name)
		if set.DisplayName != "" {
			e.DisplayName = set.DisplayName
		}
	}
	if e.DisplayName == "" {
		e.DisplayName = attr.LogicalName
	}
	used := make(map[string]struct{}, len(set.Options))
	for _, o := range set.Options {
		if o == nil {
			continue
		}
		e.Options = append(e.Options, &EnumOption{
			Value: o.Value,
			Label: o.Label,
			Name:  uniqueName(optionName(o.Label, o.Value), used),
		})
	}
	return e
}
