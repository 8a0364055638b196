// Package xrmgen turns entity metadata of a Dynamics-style metadata service
// into a normalized, cross-referenced and deterministically ordered model
// that code templates render into source files.
//
// The model is built by the compiler/gen package from records loaded by
// compiler/load:
//
//	src := load.NewFileSource("metadata.json")
//	m, err := gen.NewMapper(src,
//		gen.WithNamespace("Contoso.Xrm"),
//		gen.WithEntityList("account,contact,opportunity"),
//	)
//	if err != nil {
//		return err
//	}
//	c, err := m.CreateContext(ctx)
//
// The resulting Context is handed to a renderer: a text/template
// (gen.TemplateWriter), the Go generator (gen.JenniferGenerator) or the
// GraphQL schema printer in contrib/graphql.
package xrmgen
