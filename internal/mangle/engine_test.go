package mangle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
Decl symbol_defined(File, Name, Kind, Line).
Decl code_diagnostic(File, Code, Message, Line).
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, e.LoadSchemaString(testSchema))
	return e
}

func TestLoadSchemaStringRejectsUnparsableSchema(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	require.Error(t, e.LoadSchemaString("not a valid mangle schema {{{"))
}

func TestGetFactsRequiresDeclaredPredicate(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetFacts("undeclared_predicate")
	require.Error(t, err)
}

func TestReplaceFactsForFileWithHashInsertsAndQueries(t *testing.T) {
	e := newTestEngine(t)

	facts := []Fact{
		{Predicate: "symbol_defined", Args: []interface{}{"a.java", "Widget", "class", 3}},
		{Predicate: "symbol_defined", Args: []interface{}{"a.java", "render", "method", 5}},
	}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", facts, "hash-1"))

	got, err := e.GetFacts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestReplaceFactsForFileWithHashReplacesPriorFactsForSameFile(t *testing.T) {
	e := newTestEngine(t)

	first := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java", "Old", "class", 1}}}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", first, "hash-1"))

	second := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java", "New", "class", 1}}}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", second, "hash-2"))

	got, err := e.GetFacts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, got, 1, "the stale fact for a.java must be removed, not accumulated")
	require.Equal(t, "New", got[0].Args[1])
}

func TestReplaceFactsForFileWithHashIsNoOpWhenHashUnchanged(t *testing.T) {
	e := newTestEngine(t)

	facts := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java", "Widget", "class", 3}}}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", facts, "same-hash"))

	// Re-exporting with the same hash but different (stale) facts must not
	// touch the store: a caller passing the unchanged content hash is
	// promising nothing in facts needs re-deriving.
	stale := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java", "ShouldNotAppear", "class", 99}}}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", stale, "same-hash"))

	got, err := e.GetFacts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Widget", got[0].Args[1])
}

func TestReplaceFactsForFileWithHashKeepsDifferentFilesIndependent(t *testing.T) {
	e := newTestEngine(t)

	a := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java", "A", "class", 1}}}
	b := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"b.java", "B", "class", 1}}}
	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", a, "hash-a"))
	require.NoError(t, e.ReplaceFactsForFileWithHash("b.java", b, "hash-b"))

	got, err := e.GetFacts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NoError(t, e.ReplaceFactsForFileWithHash("a.java", nil, "hash-a-2"))
	got, err = e.GetFacts("symbol_defined")
	require.NoError(t, err)
	require.Len(t, got, 1, "removing a.java's facts must not disturb b.java's")
	require.Equal(t, "b.java", got[0].Args[0])
}

func TestFactStringRendersNameConstantsAndQuotedStrings(t *testing.T) {
	f := Fact{Predicate: "code_diagnostic", Args: []interface{}{"a.java", "/type_mismatch", "bad assignment", 4}}
	require.Equal(t, `code_diagnostic("a.java", /type_mismatch, "bad assignment", 4).`, f.String())
}

func TestReplaceFactsForFileWithHashRejectsUndeclaredPredicate(t *testing.T) {
	e := newTestEngine(t)
	facts := []Fact{{Predicate: "not_declared", Args: []interface{}{"a.java"}}}
	require.Error(t, e.ReplaceFactsForFileWithHash("a.java", facts, "hash-1"))
}

func TestReplaceFactsForFileWithHashRejectsArityMismatch(t *testing.T) {
	e := newTestEngine(t)
	facts := []Fact{{Predicate: "symbol_defined", Args: []interface{}{"a.java"}}}
	require.Error(t, e.ReplaceFactsForFileWithHash("a.java", facts, "hash-1"))
}
