// Package resolve builds the scope graph over an item tree and resolves
// names against it (spec §4.8): imports contribute type/static aliases,
// packages contribute compilation-unit-local siblings, types contribute
// their members/nested types/type parameters, and (once flow/typeck layer
// in per-body locals atop a method scope) blocks contribute locals in
// lexical order.
package resolve

import (
	"strings"

	"nova/hir"
	"nova/internal/logging"
)

// ScopeKind identifies what a Scope's bindings come from.
type ScopeKind int

const (
	ScopeFile ScopeKind = iota
	ScopeType
	ScopeMethod
)

// ScopeId indexes into a ScopeGraph's Scopes slice.
type ScopeId int

// Scope is one link in the parent chain name resolution walks. Only the
// fields relevant to its Kind are populated.
type Scope struct {
	Kind ScopeKind

	Parent    ScopeId
	HasParent bool

	// ScopeFile
	PackageName string
	Imports     []hir.ImportItem

	// ScopeType
	TypeName          string
	QualifiedTypeName string // dotted package prefix, "$"-joined nesting
	NestedTypes       map[string]string

	// ScopeType and ScopeMethod
	TypeParams []string
}

// ScopeGraph is the full scope chain built from one file's item tree, plus
// the MethodId -> ScopeId index tests and callers use to find where to
// start a resolution walk.
type ScopeGraph struct {
	Scopes       []Scope
	MethodScopes map[hir.MethodId]ScopeId
	// TypeScopes maps a declared type (top-level or nested) to its own
	// ScopeType scope, so typeck can resolve a class's supertype/field/
	// return-type text in the scope it was declared in without re-walking
	// the item tree itself.
	TypeScopes map[hir.Item]ScopeId
}

func (g *ScopeGraph) alloc(s Scope) ScopeId {
	id := ScopeId(len(g.Scopes))
	g.Scopes = append(g.Scopes, s)
	return id
}

// BuildScopes walks tree's top-level items and builds the file -> type ->
// (nested type | method) scope chain. It never fails: an item tree is
// always well-formed enough to scope, even one lowered from a file the
// parser had to recover through.
func BuildScopes(tree *hir.ItemTree) *ScopeGraph {
	timer := logging.StartTimer(logging.CategoryResolve, "BuildScopes")
	defer timer.Stop()

	g := &ScopeGraph{
		MethodScopes: make(map[hir.MethodId]ScopeId),
		TypeScopes:   make(map[hir.Item]ScopeId),
	}
	fileScope := g.alloc(Scope{
		Kind:        ScopeFile,
		PackageName: tree.PackageName,
		Imports:     tree.Imports,
	})

	for _, item := range tree.Items {
		buildTypeScope(g, tree, item, fileScope, tree.PackageName, false)
	}

	logging.Get(logging.CategoryResolve).Debug("built %d scopes (%d methods) for package %s",
		len(g.Scopes), len(g.MethodScopes), tree.PackageName)
	return g
}

// buildTypeScope allocates the scope for one type declaration (top-level or
// nested) and recurses into its members. qualifiedPrefix is the dotted
// package name when declaring a top-level type, or the enclosing type's own
// qualified name when declaring a nested one; nested selects the "$"
// separator nested binary names use instead of ".".
func buildTypeScope(g *ScopeGraph, tree *hir.ItemTree, item hir.Item, parent ScopeId, qualifiedPrefix string, nested bool) {
	name := tree.Name(item)
	members := tree.Members(item)

	qualified := name
	if qualifiedPrefix != "" {
		sep := "."
		if nested {
			sep = "$"
		}
		qualified = qualifiedPrefix + sep + name
	}

	typeScope := g.alloc(Scope{
		Kind:              ScopeType,
		Parent:            parent,
		HasParent:         true,
		TypeName:          name,
		QualifiedTypeName: qualified,
		TypeParams:        typeParamsOf(tree, item),
		NestedTypes:       nestedTypesOf(tree, members, qualified),
	})
	g.TypeScopes[item] = typeScope

	for _, m := range members {
		switch m.Kind {
		case hir.MemberMethod:
			method := tree.Method(m.Method)
			methodScope := g.alloc(Scope{
				Kind:       ScopeMethod,
				Parent:     typeScope,
				HasParent:  true,
				TypeParams: method.TypeParams,
			})
			g.MethodScopes[m.Method] = methodScope
		case hir.MemberNestedType:
			buildTypeScope(g, tree, m.Nested, typeScope, qualified, true)
		}
	}
}

func typeParamsOf(tree *hir.ItemTree, item hir.Item) []string {
	switch item.Kind {
	case hir.ItemClass:
		return tree.Class(hir.ClassId(item.Index)).TypeParams
	case hir.ItemInterface:
		return tree.Interface(hir.InterfaceId(item.Index)).TypeParams
	}
	return nil
}

func nestedTypesOf(tree *hir.ItemTree, members []hir.Member, qualified string) map[string]string {
	out := make(map[string]string)
	for _, m := range members {
		if m.Kind != hir.MemberNestedType {
			continue
		}
		name := tree.Name(m.Nested)
		out[name] = qualified + "$" + name
	}
	return out
}

// simpleName returns the last dotted segment of a qualified name.
func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
