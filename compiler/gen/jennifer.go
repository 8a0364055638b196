package gen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

const (
	uuidPkg = "github.com/google/uuid"
	timePkg = "time"
)

// JenniferGenerator generates early-bound Go types for a Context: one file
// per entity, a file with the global enums and a file with the shared
// reference type.
type JenniferGenerator struct {
	ctx     *Context
	workers int
	outDir  string
	pkg     string

	// Track generated enum types to avoid duplicates
	enumsMu        sync.Mutex
	generatedEnums map[string]bool
}

// NewJenniferGenerator creates a new Jennifer-based generator. The package
// name defaults to the last element of the output directory.
func NewJenniferGenerator(c *Context, outDir string) *JenniferGenerator {
	return &JenniferGenerator{
		ctx:            c,
		workers:        runtime.GOMAXPROCS(0),
		outDir:         outDir,
		pkg:            filepath.Base(outDir),
		generatedEnums: make(map[string]bool),
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *JenniferGenerator) WithPackage(pkg string) *JenniferGenerator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// Pkg returns the output package name.
func (g *JenniferGenerator) Pkg() string { return g.pkg }

// Generate writes all files with parallel execution.
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if g.ctx == nil {
		return NewConfigError("Context", nil, "no context to generate")
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return NewGenerationError("write", g.outDir, "create output directory", err)
	}
	// Global enums are claimed before the entity files run, so that local
	// enums never shadow them.
	for _, en := range g.ctx.Enums {
		g.CheckEnumGenerated(en.Name)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	errg.Go(func() error {
		return g.writeFile(g.GenReference(), "xrm.go")
	})
	errg.Go(func() error {
		return g.writeFile(g.GenEnums(), "enums.go")
	})
	files := g.FileNames()
	for _, e := range g.ctx.Entities {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(g.GenEntity(e), files[e])
		})
	}
	return errg.Wait()
}

// FileNames returns the name of the file generated for each entity: the
// lower-cased code name. Names taken by the shared files or by another
// entity (override code names may differ only in case) get a numeric
// suffix, and names the go tool would ignore or treat as tests are
// adjusted.
func (g *JenniferGenerator) FileNames() map[*Entity]string {
	used := names("xrm", "enums")
	files := make(map[*Entity]string, len(g.ctx.Entities))
	for _, e := range g.ctx.Entities {
		base := strings.TrimLeft(strings.ToLower(e.Name), "_.")
		if base == "" {
			base = "entity"
		}
		if strings.HasSuffix(base, "_test") {
			base += "_"
		}
		files[e] = uniqueName(base, used) + ".go"
	}
	return files
}

// NewFile creates a new Jennifer file with the standard header comment.
func (g *JenniferGenerator) NewFile() *jen.File {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by xrmgen. DO NOT EDIT.")
	return f
}

// GenReference generates the EntityReference type used by lookup fields.
func (g *JenniferGenerator) GenReference() *jen.File {
	f := g.NewFile()
	if g.ctx.Namespace != "" {
		f.Comment("Namespace is the namespace the types were generated for.")
		f.Const().Id("Namespace").Op("=").Lit(g.ctx.Namespace)
	}
	f.Comment("EntityReference points to a record of another entity.")
	f.Type().Id("EntityReference").Struct(
		jen.Id("LogicalName").String().Tag(map[string]string{"json": "logicalName"}),
		jen.Id("ID").Qual(uuidPkg, "UUID").Tag(map[string]string{"json": "id"}),
		jen.Id("Name").String().Tag(map[string]string{"json": "name,omitempty"}),
	)
	return f
}

// GenEnums generates the global enums of the Context.
func (g *JenniferGenerator) GenEnums() *jen.File {
	f := g.NewFile()
	for _, en := range g.ctx.Enums {
		g.genEnum(f, en)
	}
	return f
}

// GenEntity generates the struct, constants and local enums of an entity.
func (g *JenniferGenerator) GenEntity(e *Entity) *jen.File {
	f := g.NewFile()
	for _, en := range e.Enums {
		if en.IsGlobal || g.CheckEnumGenerated(en.Name) {
			continue
		}
		g.genEnum(f, en)
	}
	f.Commentf("%sLogicalName is the logical name of the %s entity.", e.Name, e.DisplayName)
	f.Const().Id(e.Name + "LogicalName").Op("=").Lit(e.LogicalName)

	fields := make([]jen.Code, 0, len(e.Fields))
	for _, fd := range e.Fields {
		fields = append(fields, jen.Id(fd.Name).Add(g.GoType(fd)).Tag(g.StructTags(fd)))
	}
	f.Commentf("%s is the %s entity.", e.Name, e.DisplayName)
	f.Type().Id(e.Name).Struct(fields...)

	if rels := g.relationships(e); len(rels) > 0 {
		f.Commentf("%sRelationships maps relationship names of %s to their target entity.", e.Name, e.Name)
		f.Var().Id(e.Name + "Relationships").Op("=").Map(jen.String()).String().Values(rels...)
	}
	return f
}

func (g *JenniferGenerator) relationships(e *Entity) []jen.Code {
	var rels []jen.Code
	for _, kind := range []RelationshipKind{OneToMany, ManyToOne, ManyToMany} {
		for _, r := range e.Relationships(kind) {
			rels = append(rels, jen.Lit(r.LogicalName).Op(":").Lit(r.Target))
		}
	}
	return rels
}

func (g *JenniferGenerator) genEnum(f *jen.File, en *Enum) {
	f.Commentf("%s values of the %s option set.", en.Name, en.DisplayName)
	f.Type().Id(en.Name).Int()
	if len(en.Options) == 0 {
		return
	}
	consts := make([]jen.Code, 0, len(en.Options))
	for _, o := range en.Options {
		consts = append(consts, jen.Id(en.Name+o.Name).Id(en.Name).Op("=").Lit(o.Value))
	}
	f.Const().Defs(consts...)
}

// GoType returns the Jennifer code for a field's Go type.
func (g *JenniferGenerator) GoType(f *Field) jen.Code {
	switch f.Type {
	case FieldString, FieldEntityName:
		return jen.String()
	case FieldInt:
		return jen.Int32()
	case FieldBigInt:
		return jen.Int64()
	case FieldDouble, FieldDecimal, FieldMoney:
		return jen.Float64()
	case FieldBool:
		return jen.Bool()
	case FieldDateTime:
		return jen.Op("*").Qual(timePkg, "Time")
	case FieldGUID:
		return jen.Qual(uuidPkg, "UUID")
	case FieldLookup:
		return jen.Op("*").Id("EntityReference")
	case FieldPartyList:
		return jen.Index().Id("EntityReference")
	case FieldOptionSet:
		if f.Enum != nil {
			return jen.Op("*").Id(f.Enum.Name)
		}
		return jen.Op("*").Int()
	case FieldMultiOptionSet:
		if f.Enum != nil {
			return jen.Index().Id(f.Enum.Name)
		}
		return jen.Index().Int()
	case FieldImage:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

// StructTags returns the struct tags for a field.
func (g *JenniferGenerator) StructTags(f *Field) map[string]string {
	return map[string]string{"json": f.LogicalName + ",omitempty"}
}

// CheckEnumGenerated checks if an enum type has already been generated.
// Returns true if it was already generated, false if this is the first time.
// This method is thread-safe.
func (g *JenniferGenerator) CheckEnumGenerated(enumName string) bool {
	g.enumsMu.Lock()
	defer g.enumsMu.Unlock()
	if g.generatedEnums[enumName] {
		return true
	}
	g.generatedEnums[enumName] = true
	return false
}

// writeFile writes jennifer file directly to disk (no buffering).
func (g *JenniferGenerator) writeFile(f *jen.File, filename string) error {
	path := filepath.Join(g.outDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return NewGenerationError("write", filename, "", err)
	}
	defer out.Close()

	if err := f.Render(out); err != nil {
		return NewGenerationError("render", filename, "", err)
	}
	return nil
}
