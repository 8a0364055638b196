package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goTemplate = `package {{ lower .Namespace }}

import "fmt"

const (
{{- range .Entities }}
	{{ .Name }}LogicalName = {{ quote .LogicalName }}
{{- end }}
)
`

func TestParseTemplate(t *testing.T) {
	_, err := ParseTemplate("broken", "{{ .Entities")
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))

	_, err = ParseTemplateFile(filepath.Join(t.TempDir(), "missing.tmpl"))
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestTemplateWriterRender(t *testing.T) {
	tmpl, err := ParseTemplate("list", `{{ range .Entities }}{{ .Name }}={{ snake .Name }}:{{ plural .Name }};{{ end }}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTemplateWriter(tmpl, t.TempDir()).Render(&buf, testContext(t, "account", "contact")))
	assert.Equal(t, "Account=account:Accounts;Contact=contact:Contacts;", buf.String())
}

func TestTemplateWriterRenderError(t *testing.T) {
	tmpl, err := ParseTemplate("bad", `{{ .Missing }}`)
	require.NoError(t, err)
	err = NewTemplateWriter(tmpl, t.TempDir()).Render(&bytes.Buffer{}, testContext(t, "account"))
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestTemplateWriterWriteFile(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := ParseTemplate("entities", goTemplate)
	require.NoError(t, err)
	c := testContext(t, "account", "contact")
	c.Namespace = "Models"

	w := NewTemplateWriter(tmpl, dir)
	require.NoError(t, w.WriteFile(c, "entities.go"))

	out, err := os.ReadFile(filepath.Join(dir, "entities.go"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "package models")
	assert.Contains(t, string(out), "AccountLogicalName")
	assert.Contains(t, string(out), `"contact"`)
	assert.NotContains(t, string(out), `"fmt"`, "unused imports are removed")
	assert.Equal(t, 1, w.Metrics().FilesGenerated)
}

func TestTemplateWriterFormatError(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := ParseTemplate("broken", "package x\n\nfunc {{ range .Entities }}{{ .Name }}{{ end }} {\n")
	require.NoError(t, err, "the template is valid, its output is not Go")

	err = NewTemplateWriter(tmpl, dir).WriteFile(testContext(t, "account"), "broken.go")
	require.Error(t, err)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "format", gerr.Phase)
	debug, err := os.ReadFile(filepath.Join(dir, "broken.go.error"))
	require.NoError(t, err)
	assert.Equal(t, "package x\n\nfunc Account {\n", string(debug), "the unformatted output is kept")
	assert.NoFileExists(t, filepath.Join(dir, "broken.go"))
}

func TestTemplateWriterPlainText(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := ParseTemplate("cs", `namespace {{ .Namespace }} { {{ range .Entities }}class {{ .Name }} {} {{ end }}}`)
	require.NoError(t, err)
	require.NoError(t, NewTemplateWriter(tmpl, dir).WriteFile(testContext(t, "lead"), "Entities.cs"))

	out, err := os.ReadFile(filepath.Join(dir, "Entities.cs"))
	require.NoError(t, err)
	assert.Equal(t, "namespace Contoso.Xrm { class Lead {} }", string(out))
}

func TestTemplateWriterWriteEntities(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := ParseTemplate("root", `{{ define "entity" }}{{ .LogicalName }}:{{ len .Fields }}{{ end }}`)
	require.NoError(t, err)
	c := testContext(t, "account", "contact", "lead")

	w := NewTemplateWriter(tmpl, dir).WithWorkers(2)
	require.NoError(t, w.WriteEntities(context.Background(), c, func(e *Entity) string {
		return filepath.Join("entities", strings.ToLower(e.Name)+".txt")
	}))

	out, err := os.ReadFile(filepath.Join(dir, "entities", "lead.txt"))
	require.NoError(t, err)
	assert.Equal(t, "lead:1", string(out))
	assert.Equal(t, 3, w.Metrics().FilesGenerated)

	plain, err := ParseTemplate("plain", "text")
	require.NoError(t, err)
	err = NewTemplateWriter(plain, dir).WriteEntities(context.Background(), c, func(*Entity) string { return "x" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "entity" template`)
}
