package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/xrmgen/compiler/gen"
	"github.com/syssam/xrmgen/contrib/graphql"
	"github.com/syssam/xrmgen/internal/cli/config"
	"github.com/syssam/xrmgen/internal/watch"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "g"},
		Short:   "Generate code from entity metadata",
		Long: `Build the metadata context for the selected entities and render it.

Formats:
  go        early-bound Go types, one file per entity
  graphql   a GraphQL schema (and gqlgen bindings when configured)
  template  a text/template file; an "entity" template renders one file per entity

Examples:
  xrmgen generate
  xrmgen generate --format graphql --output schema/xrm.graphql
  xrmgen generate --format template --template templates/entities.go.tmpl --watch
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := a.generate(cmd.Context(), out); err != nil {
				return err
			}
			if !watchMode {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, out)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: go, graphql or template")
	cmd.Flags().StringP("output", "o", "", "Output directory (or .graphql file)")
	cmd.Flags().StringP("template", "t", "", "Template file for the template format")
	cmd.Flags().String("package", "", "Go package name of generated code")
	cmd.Flags().Int("workers", 0, "Parallel file writers (0 uses GOMAXPROCS)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Regenerate when the dump, template or mapping changes")

	return cmd
}

// generate builds the context and renders it in the configured format.
func (a *app) generate(ctx context.Context, out io.Writer) error {
	c, err := a.mapper.CreateContext(ctx)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	var target string
	switch a.cfg.Format {
	case config.FormatGo:
		target = a.cfg.Output
		err = gen.NewJenniferGenerator(c, target).
			WithPackage(a.cfg.PackageName()).
			WithWorkers(a.cfg.Workers).
			Generate(ctx)
	case config.FormatGraphQL:
		target, err = a.writeGraphQL(c)
	case config.FormatTemplate:
		target = a.cfg.Output
		err = a.writeTemplate(ctx, c)
	default:
		err = fmt.Errorf("unknown format %q", a.cfg.Format)
	}
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprint(out, "✓ ")
	fmt.Fprintf(out, "Generated %d entities and %d option sets (%s) in %s\n", len(c.Entities), len(c.Enums), a.cfg.Format, target)
	return nil
}

func (a *app) writeGraphQL(c *gen.Context) (string, error) {
	path := a.cfg.Output
	if filepath.Ext(path) != ".graphql" {
		path = filepath.Join(path, "schema.graphql")
	}
	if _, err := graphql.Load(c); err != nil {
		return "", gen.NewGenerationError("validate", path, "invalid schema", err)
	}
	var buf bytes.Buffer
	if err := graphql.SDL(&buf, c); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", gen.NewGenerationError("write", path, "create directory", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", gen.NewGenerationError("write", path, "write schema", err)
	}

	if a.cfg.GQLGen != "" {
		gc, err := graphql.LoadGQLGenConfig(a.cfg.GQLGen)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(filepath.Dir(a.cfg.GQLGen), path)
		if err != nil {
			rel = path
		}
		gc.Bind(c, graphql.Schema(c), a.cfg.Models, filepath.ToSlash(rel))
		if err := graphql.SaveGQLGenConfig(a.cfg.GQLGen, gc); err != nil {
			return "", err
		}
	}
	return path, nil
}

// writeTemplate renders the template file into the output directory. The
// root template is written to the template name without its last
// extension (entities.go.tmpl -> entities.go); a nested "entity" template
// is rendered once per entity with the same extension.
func (a *app) writeTemplate(ctx context.Context, c *gen.Context) error {
	tmpl, err := gen.ParseTemplateFile(a.cfg.Template)
	if err != nil {
		return err
	}
	w := gen.NewTemplateWriter(tmpl, a.cfg.Output).WithWorkers(a.cfg.Workers)

	base := filepath.Base(a.cfg.Template)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if err := w.WriteFile(c, name); err != nil {
		return err
	}
	if tmpl.Lookup(gen.EntityTemplate) == nil {
		return nil
	}
	ext := filepath.Ext(name)
	return w.WriteEntities(ctx, c, func(e *gen.Entity) string {
		return strings.ToLower(e.Name) + ext
	})
}

// watch regenerates on changes until ctx is done. A changed dump drops
// the cached metadata first.
func (a *app) watch(ctx context.Context, out io.Writer) error {
	source, err := filepath.Abs(a.cfg.Source)
	if err != nil {
		return err
	}
	files := []string{a.cfg.Source, a.cfg.Template, a.cfg.MappingPath()}
	fw, err := watch.NewFileWatcher(files, watch.DefaultDelay, a.logger, func(changed []string) error {
		if slices.Contains(changed, source) {
			a.mapper.Refresh()
		}
		return a.generate(ctx, out)
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}
	color.New(color.FgYellow).Fprintln(out, "Watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	return fw.Stop()
}
