// Package graphql renders a metadata Context as a GraphQL schema.
//
// Entities become object types carrying their CRM logical name in a
// @logicalName directive, option sets become enums and lookups point at a
// shared EntityReference type. A Query type exposes a by-id and a list
// field per entity.
//
//	var buf bytes.Buffer
//	if err := graphql.SDL(&buf, c); err != nil {
//	    log.Fatal(err)
//	}
//
// The schema can be bound to the types produced by gen.JenniferGenerator
// through a gqlgen.yml file:
//
//	cfg, err := graphql.LoadGQLGenConfig("gqlgen.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Bind(c, graphql.Schema(c), "example.com/crm/xrm", "xrm.graphql")
//	if err := graphql.SaveGQLGenConfig("gqlgen.yml", cfg); err != nil {
//	    log.Fatal(err)
//	}
package graphql
