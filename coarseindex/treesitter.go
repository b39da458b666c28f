// Package coarseindex is a tree-sitter-backed, whole-workspace symbol
// pre-index (spec/SPEC_FULL.md §1's domain stack: "instant results before
// the precise hand-rolled HIR pipeline has caught up on a freshly opened,
// large workspace"). It never resolves types and never backs a diagnostic:
// it answers "which files mention a symbol named X, roughly where" fast
// enough to populate a workspace-wide symbol search the moment a project is
// opened, while db's hir/resolve/types/typeck pipeline (§4.6-4.11) works
// through the precise answer file by file.
//
// Grounded on internal/world/ast_treesitter.go's TreeSitterParser: the same
// recursive-walk-switch-on-node-type extraction shape, narrowed from that
// file's five languages down to Java, and narrowed from emitting generic
// core.Fact tuples down to this package's own Location type. Nova's own
// hand-rolled parser (syntax, §4.4-4.5) remains the only source of truth
// once a file has gone through the HIR pipeline; this index is a cache, not
// a competing parser, and is inverted from the teacher's own tiered
// strategy (fall back to tree-sitter when the precise parser can't handle a
// language) into coarse-first, precise-follows.
package coarseindex

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"nova/text"
)

// Location is one occurrence of a declared symbol: the file that declares
// it and the 1-based source line, good enough for "jump to approximate
// location" before the precise pipeline has a FileId's ItemTree ready.
type Location struct {
	Path string
	Line int
	Kind string
}

// Index is a coarse, name -> locations symbol table built from tree-sitter
// parses. The zero value is not usable; build one with New.
type Index struct {
	mu     sync.RWMutex
	parser *sitter.Parser
	byName map[string][]Location
	byFile map[string][]string
}

// New constructs an empty Index with a Java-configured tree-sitter parser.
func New() *Index {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Index{
		parser: p,
		byName: make(map[string][]Location),
		byFile: make(map[string][]string),
	}
}

// Close releases the underlying tree-sitter parser.
func (ix *Index) Close() { ix.parser.Close() }

// IndexFile (re)indexes path, replacing whatever symbols it previously
// contributed. Safe to call repeatedly as a file changes; a tree-sitter
// parse error does not prevent whatever was recovered from being indexed,
// since a coarse index's whole purpose is to degrade gracefully on exactly
// the malformed-or-half-typed source the precise pipeline is still working
// through.
func (ix *Index) IndexFile(ctx context.Context, path string, content []byte) error {
	tree, err := ix.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return err
	}
	defer tree.Close()

	lines := text.NewLineIndex(content)
	symbols := extractSymbols(tree.RootNode(), content, lines)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeFileLocked(path)
	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, sym.name)
		ix.byName[sym.name] = append(ix.byName[sym.name], Location{Path: path, Line: sym.line, Kind: sym.kind})
	}
	ix.byFile[path] = names
	return nil
}

// RemoveFile drops every symbol path previously contributed, e.g. when a
// file is deleted from the workspace.
func (ix *Index) RemoveFile(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeFileLocked(path)
}

func (ix *Index) removeFileLocked(path string) {
	for _, name := range ix.byFile[path] {
		locs := ix.byName[name]
		out := locs[:0]
		for _, l := range locs {
			if l.Path != path {
				out = append(out, l)
			}
		}
		if len(out) == 0 {
			delete(ix.byName, name)
		} else {
			ix.byName[name] = out
		}
	}
	delete(ix.byFile, path)
}

// Lookup returns every known location for a declared symbol name, empty if
// none is indexed. The returned slice is a copy, safe for the caller to
// retain past a concurrent IndexFile/RemoveFile call.
func (ix *Index) Lookup(name string) []Location {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]Location(nil), ix.byName[name]...)
}

// Len reports how many distinct symbol names are currently indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byName)
}

type symbol struct {
	name string
	kind string
	line int
}

// extractSymbols walks a parsed compilation unit's tree-sitter tree and
// pulls out type and member declarations, mirroring
// TreeSitterParser.extractGoSymbols' recursive walk-and-switch shape,
// retargeted at Java's grammar node types.
func extractSymbols(root *sitter.Node, content []byte, lines *text.LineIndex) []symbol {
	var out []symbol
	getText := func(n *sitter.Node) string { return n.Content(content) }
	lineOf := func(n *sitter.Node) int { return int(lines.Position(text.Offset(n.StartByte())).Line) }

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				out = append(out, symbol{name: getText(name), kind: n.Type(), line: lineOf(n)})
			}
		case "method_declaration", "constructor_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				out = append(out, symbol{name: getText(name), kind: n.Type(), line: lineOf(n)})
			}
		case "field_declaration":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() != "variable_declarator" {
					continue
				}
				if name := child.ChildByFieldName("name"); name != nil {
					out = append(out, symbol{name: getText(name), kind: "field_declaration", line: lineOf(child)})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}
