package gen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// EntityTemplate is the name of the optional template block rendered once
// per entity by TemplateWriter.WriteEntities.
const EntityTemplate = "entity"

// Funcs are the functions available to templates.
var Funcs = template.FuncMap{
	"pascal":   pascal,
	"camel":    camel,
	"snake":    snake,
	"plural":   inflect.Pluralize,
	"singular": inflect.Singularize,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
	"quote":    strconv.Quote,
	"join":     strings.Join,
	"codename": CodeName,
}

// ParseTemplate parses a template with the template functions.
func ParseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(Funcs).Parse(text)
	if err != nil {
		return nil, NewGenerationError("template", name, "parse template", err)
	}
	return t, nil
}

// ParseTemplateFile reads and parses the template at path.
func ParseTemplateFile(path string) (*template.Template, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, NewGenerationError("template", path, "read template", err)
	}
	return ParseTemplate(filepath.Base(path), string(text))
}

// TemplateWriter renders a Context with a text template. Outputs with
// a .go extension are formatted with goimports.
type TemplateWriter struct {
	tmpl    *template.Template
	outDir  string
	workers int

	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks generated output.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// NewTemplateWriter creates a new template-based writer.
func NewTemplateWriter(tmpl *template.Template, outDir string) *TemplateWriter {
	return &TemplateWriter{
		tmpl:    tmpl,
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers of WriteEntities.
func (w *TemplateWriter) WithWorkers(n int) *TemplateWriter {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the generation metrics.
func (w *TemplateWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Render executes the root template with the Context.
func (w *TemplateWriter) Render(out io.Writer, c *Context) error {
	if err := w.tmpl.Execute(out, c); err != nil {
		return NewGenerationError("template", w.tmpl.Name(), "execute template", err)
	}
	return nil
}

// WriteFile renders the Context into the file name, relative to the output
// directory.
func (w *TemplateWriter) WriteFile(c *Context, name string) error {
	var buf bytes.Buffer
	if err := w.Render(&buf, c); err != nil {
		return err
	}
	return w.write(name, buf.Bytes())
}

// WriteEntities renders the "entity" template once per entity, in parallel.
// The data of each execution is the entity; name returns its output file.
func (w *TemplateWriter) WriteEntities(ctx context.Context, c *Context, name func(*Entity) string) error {
	t := w.tmpl.Lookup(EntityTemplate)
	if t == nil {
		return NewGenerationError("template", w.tmpl.Name(), fmt.Sprintf("missing %q template", EntityTemplate), nil)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, e := range c.Entities {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var buf bytes.Buffer
			if err := t.Execute(&buf, e); err != nil {
				return NewGenerationError("template", name(e), "execute entity template", err)
			}
			return w.write(name(e), buf.Bytes())
		})
	}
	return eg.Wait()
}

func (w *TemplateWriter) write(name string, out []byte) error {
	path := filepath.Join(w.outDir, name)
	if filepath.Ext(name) == ".go" {
		formatted, err := imports.Process(path, out, nil)
		if err != nil {
			// Keep the unformatted output around for debugging.
			debugPath := path + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, out, 0o644)
			return NewGenerationError("format", name, "unformatted output written to "+debugPath, err)
		}
		out = formatted
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError("write", name, "create directory", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return NewGenerationError("write", name, "", err)
	}
	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(out))
	w.mu.Unlock()
	return nil
}
