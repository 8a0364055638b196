package graphql

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/xrmgen/compiler/gen"
)

// Names of the types every schema declares.
const (
	ScalarDateTime       = "DateTime"
	ScalarLong           = "Long"
	ReferenceType        = "EntityReference"
	QueryType            = "Query"
	LogicalNameDirective = "logicalName"
)

// source is the position of generated definitions. The formatter reads
// it to skip built-in directives.
var source = &ast.Source{Name: "xrm.graphql"}

// Schema builds a GraphQL schema document describing the entities and
// option sets of c. Objects carry a @logicalName directive so consumers
// can map them back to the CRM names.
func Schema(c *gen.Context) *ast.SchemaDocument {
	b := &builder{
		doc:     &ast.SchemaDocument{},
		types:   map[string]bool{QueryType: true},
		objects: map[*gen.Entity]string{},
		enum:    map[*gen.Enum]string{},
	}
	b.prelude()
	for _, e := range c.Entities {
		b.objects[e] = b.typeName(e.Name)
	}
	b.enums(c)
	for _, e := range c.Entities {
		b.object(e)
	}
	b.query(c)
	return b.doc
}

// SDL writes the schema document of c to w.
func SDL(w io.Writer, c *gen.Context) error {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchemaDocument(Schema(c))
	_, err := w.Write(buf.Bytes())
	return err
}

// Load renders c and loads the result through the gqlparser validator.
func Load(c *gen.Context) (*ast.Schema, error) {
	var buf bytes.Buffer
	if err := SDL(&buf, c); err != nil {
		return nil, err
	}
	return gqlparser.LoadSchema(&ast.Source{Name: source.Name, Input: buf.String()})
}

type builder struct {
	doc     *ast.SchemaDocument
	types   map[string]bool
	objects map[*gen.Entity]string
	enum    map[*gen.Enum]string
}

func (b *builder) prelude() {
	b.doc.Directives = append(b.doc.Directives, &ast.DirectiveDefinition{
		Name:        LogicalNameDirective,
		Description: "Logical name of the CRM entity, attribute or option set.",
		Position:    &ast.Position{Src: source},
		Arguments: ast.ArgumentDefinitionList{
			{Name: "name", Type: ast.NonNullNamedType("String", nil)},
		},
		Locations: []ast.DirectiveLocation{ast.LocationObject, ast.LocationFieldDefinition, ast.LocationEnum},
	})
	for _, name := range []string{ScalarDateTime, ScalarLong} {
		b.define(&ast.Definition{Kind: ast.Scalar, Name: name})
	}
	b.define(&ast.Definition{
		Kind:        ast.Object,
		Name:        ReferenceType,
		Description: "Reference to a record of another entity.",
		Fields: ast.FieldList{
			{Name: "logicalName", Type: ast.NonNullNamedType("String", nil)},
			{Name: "id", Type: ast.NonNullNamedType("ID", nil)},
			{Name: "name", Type: ast.NamedType("String", nil)},
		},
	})
}

func (b *builder) define(def *ast.Definition) {
	b.types[def.Name] = true
	b.doc.Definitions = append(b.doc.Definitions, def)
}

// enums declares global option sets first, then the local ones in entity order.
func (b *builder) enums(c *gen.Context) {
	add := func(en *gen.Enum) {
		if _, ok := b.enum[en]; ok || len(en.Options) == 0 {
			return
		}
		name := b.typeName(en.Name)
		b.enum[en] = name
		def := &ast.Definition{
			Kind:        ast.Enum,
			Name:        name,
			Description: en.DisplayName,
			Directives:  logicalName(enumLogicalName(en)),
		}
		used := map[string]bool{}
		for _, o := range en.Options {
			v := unique(enumValue(o.Name), used)
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
				Name:        v,
				Description: strings.TrimSpace(o.Label + " (" + strconv.Itoa(o.Value) + ")"),
			})
		}
		b.define(def)
	}
	for _, en := range c.Enums {
		add(en)
	}
	for _, e := range c.Entities {
		for _, en := range e.Enums {
			if !en.IsGlobal {
				add(en)
			}
		}
	}
}

func (b *builder) object(e *gen.Entity) {
	def := &ast.Definition{
		Kind:        ast.Object,
		Name:        b.objects[e],
		Description: e.Description,
		Directives:  logicalName(e.LogicalName),
	}
	used := map[string]bool{"id": true}
	def.Fields = append(def.Fields, &ast.FieldDefinition{Name: "id", Type: ast.NonNullNamedType("ID", nil)})
	for _, f := range e.Fields {
		if f.IsPrimaryID {
			continue
		}
		typ := b.fieldType(f)
		if typ == nil {
			continue
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:        unique(fieldName(f.Name), used),
			Description: f.Description,
			Type:        typ,
			Directives:  logicalName(f.LogicalName),
		})
	}
	for _, kind := range []gen.RelationshipKind{gen.ManyToOne, gen.OneToMany, gen.ManyToMany} {
		for _, r := range e.Relationships(kind) {
			name, ok := b.objects[r.Entity]
			if !r.Resolved() || !ok {
				continue
			}
			target := ast.NamedType(name, nil)
			if kind != gen.ManyToOne {
				target = ast.NonNullListType(ast.NonNullNamedType(name, nil), nil)
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name:       unique(fieldName(r.Name), used),
				Type:       target,
				Directives: logicalName(r.LogicalName),
			})
		}
	}
	b.define(def)
}

func (b *builder) query(c *gen.Context) {
	if len(c.Entities) == 0 {
		return
	}
	def := &ast.Definition{Kind: ast.Object, Name: QueryType}
	used := map[string]bool{}
	for _, e := range c.Entities {
		name := b.objects[e]
		def.Fields = append(def.Fields,
			&ast.FieldDefinition{
				Name:      unique(fieldName(e.Name), used),
				Arguments: ast.ArgumentDefinitionList{{Name: "id", Type: ast.NonNullNamedType("ID", nil)}},
				Type:      ast.NamedType(name, nil),
			},
			&ast.FieldDefinition{
				Name: unique(fieldName(e.PluralName()), used),
				Type: ast.NonNullListType(ast.NonNullNamedType(name, nil), nil),
			},
		)
	}
	b.define(def)
}

// fieldType returns the GraphQL type of f, or nil for attributes that
// hold no readable value.
func (b *builder) fieldType(f *gen.Field) *ast.Type {
	var named string
	switch f.Type {
	case gen.FieldString, gen.FieldEntityName:
		named = "String"
	case gen.FieldInt:
		named = "Int"
	case gen.FieldBigInt:
		named = ScalarLong
	case gen.FieldDouble, gen.FieldDecimal, gen.FieldMoney:
		named = "Float"
	case gen.FieldBool, gen.FieldManagedProperty:
		named = "Boolean"
	case gen.FieldDateTime:
		named = ScalarDateTime
	case gen.FieldGUID:
		named = "ID"
	case gen.FieldLookup:
		named = ReferenceType
	case gen.FieldPartyList:
		return ast.NonNullListType(ast.NonNullNamedType(ReferenceType, nil), nil)
	case gen.FieldOptionSet:
		named = b.enumType(f)
	case gen.FieldMultiOptionSet:
		return ast.ListType(ast.NonNullNamedType(b.enumType(f), nil), nil)
	case gen.FieldImage:
		named = "String"
	default:
		return nil
	}
	if f.Required {
		return ast.NonNullNamedType(named, nil)
	}
	return ast.NamedType(named, nil)
}

func (b *builder) enumType(f *gen.Field) string {
	if name, ok := b.enum[f.Enum]; ok {
		return name
	}
	return "Int"
}

func (b *builder) typeName(name string) string {
	return unique(sanitize(name), b.types)
}

func logicalName(name string) ast.DirectiveList {
	return ast.DirectiveList{{
		Name: LogicalNameDirective,
		Arguments: ast.ArgumentList{{
			Name:  "name",
			Value: &ast.Value{Kind: ast.StringValue, Raw: name},
		}},
	}}
}

func enumLogicalName(en *gen.Enum) string {
	if en.IsGlobal {
		return en.GlobalName
	}
	return en.LogicalName
}

func fieldName(name string) string {
	if name == "" {
		return "x"
	}
	return sanitize(inflect.CamelizeDownFirst(name))
}

func enumValue(name string) string {
	v := sanitize(strings.ToUpper(inflect.Underscore(name)))
	switch v {
	case "TRUE", "FALSE", "NULL":
		v += "_"
	}
	return v
}

// sanitize maps name onto the GraphQL name grammar /[_A-Za-z][_0-9A-Za-z]*/
// without the reserved "__" prefix.
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, name)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	for strings.HasPrefix(name, "__") {
		name = name[1:]
	}
	return name
}

func unique(name string, used map[string]bool) string {
	n := name
	for i := 2; used[n]; i++ {
		n = name + strconv.Itoa(i)
	}
	used[n] = true
	return n
}
