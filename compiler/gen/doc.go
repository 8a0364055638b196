// Package gen turns CRM entity metadata into a normalized Context and renders
// it into code.
//
// # Architecture
//
// The package is organized around a small pipeline:
//
//   - Selection: which entities to include, from the live entity list or the
//     entities named by a mapping document
//   - Mapper: fetches the selected metadata once from a load.Source and runs
//     the remaining steps on every CreateContext call
//   - MapEntities: normalizes raw metadata into Entity, Field and Enum values
//     and applies mapping overrides
//   - Resolve: drops relationships to unselected entities and rewrites
//     single-target lookups to the code name of their target
//   - GlobalEnums: collects the global option sets, deduplicated by name
//   - SortEntities and SortEnums: deterministic, culture-aware ordering
//   - Assemble: builds the immutable Context handed to the renderers
//
// Building a context:
//
//	src := load.NewFileSource("metadata.json")
//	m, err := gen.NewMapper(src,
//	    gen.WithNamespace("Contoso.Xrm"),
//	    gen.WithEntityList("account,contact"),
//	)
//	if err != nil {
//	    return err
//	}
//	c, err := m.CreateContext(ctx)
//
// The mapper memoizes the fetched metadata and coalesces concurrent calls.
// Call Refresh when the underlying source changed.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: malformed or conflicting metadata records
//   - ConfigError: invalid options
//   - RelationshipError: relationships that do not point into their Context
//   - GenerationError: rendering and file output errors
//   - ValidationError: context invariant violations
//
// Example:
//
//	c, err := m.CreateContext(ctx)
//	if err != nil {
//	    if gen.IsSchemaError(err) {
//	        // fix the dump or the mapping
//	    }
//	    return err
//	}
//
// # Renderers
//
// A Context is rendered by JenniferGenerator (early-bound Go types, one file
// per entity) or TemplateWriter (a text/template file with an optional
// per-entity template). The GraphQL renderer lives in contrib/graphql.
//
//	err := gen.NewJenniferGenerator(c, "./xrm").
//	    WithPackage("xrm").
//	    WithWorkers(4).
//	    Generate(ctx)
package gen
