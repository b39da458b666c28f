// Package factexport turns a compilation unit's item tree and diagnostics
// into Datalog facts for the out-of-scope AI-ranking/analytics collaborator
// named in SPEC_FULL.md §1. It exists so that collaborator never needs to
// understand hir's arena-indexed types directly: it gets symbol_defined,
// symbol_referenced and code_diagnostic facts instead.
//
// Grounded on internal/mangle/engine.go's Engine: rather than build a second
// fact store, factexport wraps that same engine, declares its own narrower
// schema (three predicates instead of the engine's open-ended ones), and
// drives it with db's already-computed item trees and diagnostics instead of
// the engine's generic interface{} args. ReplaceFactsForFileWithHash mirrors
// the engine's own per-file fact replacement, keyed by a content hash rather
// than mtime (unlike workspace/signature.go, which keys a build-file
// signature on path, mtime and size), so a fact export is stable across a
// touch with no byte change.
package factexport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/mangle/ast"

	"nova/db"
	"nova/diagnostic"
	"nova/hir"
	"nova/internal/mangle"
	"nova/text"
)

// strArg forces a string argument to Mangle's String constant type rather
// than passing a raw Go string to the engine, whose conversion turns any
// string starting with "/" into a Name constant; a Name's String() rendering
// keeps the leading "/", and wrapping every argument here means a symbol or
// message text always comes back out of Exporter.Facts as a plain string.
func strArg(s string) ast.BaseTerm { return ast.String(s) }

const schema = `
Decl symbol_defined(File, Name, Kind, Line).
Decl symbol_referenced(File, Name, Kind, Line).
Decl code_diagnostic(File, Code, Message, Line).
`

// Exporter owns a mangle.Engine pre-loaded with Nova's fact schema and
// exports one compilation unit at a time into it.
type Exporter struct {
	engine *mangle.Engine
}

// New constructs an Exporter with an empty, schema-loaded fact store.
func New() (*Exporter, error) {
	engine, err := mangle.NewEngine(mangle.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("factexport: constructing engine: %w", err)
	}
	if err := engine.LoadSchemaString(schema); err != nil {
		return nil, fmt.Errorf("factexport: loading schema: %w", err)
	}
	return &Exporter{engine: engine}, nil
}

// Engine returns the underlying fact store, for a caller that wants to run
// its own Datalog queries against the exported facts (e.g. the AI-ranking
// collaborator's own rules joined against symbol_defined).
func (x *Exporter) Engine() *mangle.Engine { return x.engine }

// Facts returns every currently exported fact for predicate (one of
// "symbol_defined", "symbol_referenced", "code_diagnostic").
func (x *Exporter) Facts(predicate string) ([]mangle.Fact, error) {
	return x.engine.GetFacts(predicate)
}

// WriteDatalog writes every exported fact across all three predicates to w
// in Mangle's own textual fact syntax (predicate(args).), one fact per line
// — the hand-off format a collaborator that only speaks Datalog, not Go,
// can consume directly without linking against this module at all.
func (x *Exporter) WriteDatalog(w io.Writer) error {
	for _, predicate := range []string{"symbol_defined", "symbol_referenced", "code_diagnostic"} {
		facts, err := x.engine.GetFacts(predicate)
		if err != nil {
			return fmt.Errorf("factexport: reading %s facts: %w", predicate, err)
		}
		for _, fact := range facts {
			if _, err := fmt.Fprintln(w, fact.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportFile re-derives every fact for path from d's current item tree and
// diagnostics for id, replacing whatever facts were previously exported for
// that path. It is safe to call repeatedly as a file changes — each call is
// keyed by path and content hash, so re-exporting unchanged content is a
// cheap no-op at the engine layer (the same revision-insensitive idea
// db/inputs.go uses for its own setters, applied here to fact replacement
// instead of query memoization).
func (x *Exporter) ExportFile(ctx context.Context, d *db.Database, id db.FileId, path string) error {
	content, err := d.FileText(ctx, id)
	if err != nil {
		return fmt.Errorf("factexport: reading file text: %w", err)
	}
	tree, err := d.ItemTree(ctx, id)
	if err != nil {
		return fmt.Errorf("factexport: reading item tree: %w", err)
	}
	diags, err := d.AllDiagnostics(ctx, id)
	if err != nil {
		return fmt.Errorf("factexport: reading diagnostics: %w", err)
	}

	lines := text.NewLineIndex([]byte(content))
	facts := exportFacts(path, tree, diags, lines)

	hash := contentHash(content)
	return x.engine.ReplaceFactsForFileWithHash(path, facts, hash)
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func lineOf(lines *text.LineIndex, off text.Offset) int {
	return int(lines.Position(off).Line)
}

// exportFacts is the pure translation step, kept separate from ExportFile so
// it can be unit tested without constructing an Engine.
func exportFacts(path string, tree *hir.ItemTree, diags []diagnostic.Diagnostic, lines *text.LineIndex) []mangle.Fact {
	var facts []mangle.Fact
	for _, item := range tree.Items {
		facts = append(facts, itemFacts(path, tree, item, lines)...)
	}
	for _, imp := range tree.Imports {
		facts = append(facts, mangle.Fact{
			Predicate: "symbol_referenced",
			Args:      []interface{}{strArg(path), strArg(imp.Path), strArg("import"), int64(0)},
		})
	}
	for _, diag := range diags {
		facts = append(facts, mangle.Fact{
			Predicate: "code_diagnostic",
			Args:      []interface{}{strArg(path), strArg(string(diag.Code)), strArg(diag.Message), int64(lineOf(lines, diag.Span.Start))},
		})
	}
	return facts
}

// itemFacts emits one symbol_defined fact for item itself, one
// symbol_referenced fact per type name it mentions (superclass, implemented
// interfaces, member parameter/return types), and recurses into nested
// types and members.
func itemFacts(path string, tree *hir.ItemTree, item hir.Item, lines *text.LineIndex) []mangle.Fact {
	var facts []mangle.Fact

	name := tree.Name(item)
	kind, astId, extends, implements := itemShape(tree, item)
	line := int64(lineOf(lines, astId.Node.Span.Start))

	facts = append(facts, mangle.Fact{
		Predicate: "symbol_defined",
		Args:      []interface{}{strArg(path), strArg(name), strArg(kind), line},
	})
	for _, super := range extends {
		facts = append(facts, mangle.Fact{
			Predicate: "symbol_referenced",
			Args:      []interface{}{strArg(path), strArg(super), strArg("extends"), line},
		})
	}
	for _, iface := range implements {
		facts = append(facts, mangle.Fact{
			Predicate: "symbol_referenced",
			Args:      []interface{}{strArg(path), strArg(iface), strArg("implements"), line},
		})
	}

	for _, member := range tree.Members(item) {
		switch member.Kind {
		case hir.MemberMethod:
			facts = append(facts, methodFacts(path, tree, member.Method, lines)...)
		case hir.MemberField:
			facts = append(facts, fieldFacts(path, tree, member.Field, lines)...)
		case hir.MemberNestedType:
			facts = append(facts, itemFacts(path, tree, member.Nested, lines)...)
		}
	}
	return facts
}

// itemShape extracts the parts of a declaration that vary by ItemKind but
// are otherwise uniform for fact export: its kind label, its anchoring
// AstId, and the type names it references via extends/implements.
func itemShape(tree *hir.ItemTree, item hir.Item) (kind string, astId hir.AstId, extends []string, implements []string) {
	switch item.Kind {
	case hir.ItemClass:
		c := tree.Class(hir.ClassId(item.Index))
		if c.SuperClass != "" {
			extends = []string{c.SuperClass}
		}
		return "class", c.AstId, extends, c.Interfaces
	case hir.ItemInterface:
		i := tree.Interface(hir.InterfaceId(item.Index))
		return "interface", i.AstId, nil, i.Interfaces
	case hir.ItemEnum:
		e := tree.Enum(hir.EnumId(item.Index))
		return "enum", e.AstId, nil, e.Interfaces
	case hir.ItemRecord:
		r := tree.Record(hir.RecordId(item.Index))
		return "record", r.AstId, nil, r.Interfaces
	case hir.ItemAnnotation:
		a := tree.Annotation(hir.AnnotationId(item.Index))
		return "annotation", a.AstId, nil, nil
	}
	return "unknown", hir.AstId{}, nil, nil
}

func methodFacts(path string, tree *hir.ItemTree, id hir.MethodId, lines *text.LineIndex) []mangle.Fact {
	m := tree.Method(id)
	line := int64(lineOf(lines, m.AstId.Node.Span.Start))
	facts := []mangle.Fact{{
		Predicate: "symbol_defined",
		Args:      []interface{}{strArg(path), strArg(m.Name), strArg("method"), line},
	}}
	if m.ReturnType != "" && m.ReturnType != "void" {
		facts = append(facts, mangle.Fact{
			Predicate: "symbol_referenced",
			Args:      []interface{}{strArg(path), strArg(m.ReturnType), strArg("return-type"), line},
		})
	}
	for _, p := range m.Params {
		facts = append(facts, mangle.Fact{
			Predicate: "symbol_referenced",
			Args:      []interface{}{strArg(path), strArg(p.TypeText), strArg("param-type"), line},
		})
	}
	return facts
}

func fieldFacts(path string, tree *hir.ItemTree, id hir.FieldId, lines *text.LineIndex) []mangle.Fact {
	f := tree.Field(id)
	line := int64(lineOf(lines, f.AstId.Node.Span.Start))
	return []mangle.Fact{
		{Predicate: "symbol_defined", Args: []interface{}{strArg(path), strArg(f.Name), strArg("field"), line}},
		{Predicate: "symbol_referenced", Args: []interface{}{strArg(path), strArg(f.TypeText), strArg("field-type"), line}},
	}
}
