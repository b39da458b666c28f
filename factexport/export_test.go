package factexport

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nova/db"
	"nova/jdk"
)

func newTestDatabase(t *testing.T) (*db.Database, db.ProjectId) {
	t.Helper()
	d := db.New()
	project := d.AllocProjectId()
	idx, err := jdk.Load("/fake/jdk", 17)
	require.NoError(t, err)
	d.SetJDKIndex(project, idx)
	return d, project
}

func addFile(t *testing.T, d *db.Database, project db.ProjectId, src string) db.FileId {
	t.Helper()
	id := d.AllocFileId()
	d.SetFileText(id, src)
	d.SetFileProject(id, project)
	return id
}

func TestExportFileProducesSymbolDefinedFacts(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class Greeter { String name() { return null; } }")

	x, err := New()
	require.NoError(t, err)

	require.NoError(t, x.ExportFile(context.Background(), d, id, "Greeter.java"))

	facts, err := x.Facts("symbol_defined")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range facts {
		names[f.Args[1].(string)] = true
	}
	require.True(t, names["Greeter"])
	require.True(t, names["name"])
}

func TestExportFileProducesDiagnosticFacts(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, `class C { void m() { int x = "no"; } }`)

	x, err := New()
	require.NoError(t, err)
	require.NoError(t, x.ExportFile(context.Background(), d, id, "C.java"))

	facts, err := x.Facts("code_diagnostic")
	require.NoError(t, err)
	require.NotEmpty(t, facts)
	require.Equal(t, "type-mismatch", facts[0].Args[1].(string))
}

func TestReExportReplacesRatherThanAccumulates(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class C {}")

	x, err := New()
	require.NoError(t, err)
	require.NoError(t, x.ExportFile(context.Background(), d, id, "C.java"))

	d.SetFileText(id, "class D {}")
	require.NoError(t, x.ExportFile(context.Background(), d, id, "C.java"))

	facts, err := x.Facts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	require.Equal(t, "D", facts[0].Args[1].(string))
}

func TestWriteDatalogEmitsFactSyntax(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class C {}")

	x, err := New()
	require.NoError(t, err)
	require.NoError(t, x.ExportFile(context.Background(), d, id, "C.java"))

	var sb strings.Builder
	require.NoError(t, x.WriteDatalog(&sb))
	require.Contains(t, sb.String(), "symbol_defined(")
}
