package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nova/hir"
	"nova/jdk"
	"nova/syntax"
)

func parseTree(t *testing.T, src string) *hir.ItemTree {
	t.Helper()
	res := syntax.Parse([]byte(src))
	require.Empty(t, res.Diagnostics)
	return hir.LowerItemTree(res.Root)
}

func methodScope(t *testing.T, g *ScopeGraph, tree *hir.ItemTree, name string) ScopeId {
	t.Helper()
	id, ok := tree.FindMethod(name)
	require.True(t, ok, "method %s not found", name)
	scope, ok := g.MethodScopes[id]
	require.True(t, ok, "no scope recorded for method %s", name)
	return scope
}

func newJDK(t *testing.T) *jdk.Index {
	t.Helper()
	idx, err := jdk.Load("/fake/jdk", 17)
	require.NoError(t, err)
	return idx
}

// testClasspath is a minimal ClasspathIndex test double, grounded on the
// original suite's TestIndex (item_tree_scopes.rs): a flat type table plus
// a per-package simple-name table.
type testClasspath struct {
	types          map[string]string
	packageToTypes map[string]map[string]string
	packages       map[string]bool
}

func newTestClasspath() *testClasspath {
	return &testClasspath{
		types:          make(map[string]string),
		packageToTypes: make(map[string]map[string]string),
		packages:       make(map[string]bool),
	}
}

func (c *testClasspath) addType(pkg, name string) string {
	fq := name
	if pkg != "" {
		fq = pkg + "." + name
	}
	c.types[fq] = fq
	c.packages[pkg] = true
	if c.packageToTypes[pkg] == nil {
		c.packageToTypes[pkg] = make(map[string]string)
	}
	c.packageToTypes[pkg][name] = fq
	return fq
}

func (c *testClasspath) ResolveType(qualifiedDotted string) (string, bool) {
	qn, ok := c.types[qualifiedDotted]
	return qn, ok
}

func (c *testClasspath) ResolveTypeInPackage(packageName, name string) (string, bool) {
	m, ok := c.packageToTypes[packageName]
	if !ok {
		return "", false
	}
	qn, ok := m[name]
	return qn, ok
}

func (c *testClasspath) PackageExists(packageName string) bool {
	return c.packages[packageName]
}

func TestResolveNameJavaLangFromMethodScope(t *testing.T) {
	tree := parseTree(t, "class C {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))
	res, ok := r.ResolveName(g, scope, "String")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "java.lang.String"}, res)
}

func TestResolveNameStarImportFromMethodScope(t *testing.T) {
	tree := parseTree(t, "import java.util.*;\n\nclass C {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))
	res, ok := r.ResolveName(g, scope, "List")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "java.util.List"}, res)
}

func TestResolveQualifiedTypeNestedInMethodScope(t *testing.T) {
	tree := parseTree(t, "package com.example;\n\nclass Outer {\n    class Inner {}\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))
	qn, ok, ambiguous := r.ResolveQualifiedTypeInScope(g, scope, "Inner")
	require.True(t, ok)
	require.False(t, ambiguous)
	require.Equal(t, "com.example.Outer$Inner", qn)
}

func TestResolveQualifiedTypeViaImportedOuterAndClasspathNested(t *testing.T) {
	tree := parseTree(t, "import java.util.Map;\n\nclass C {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	cp := newTestClasspath()
	cp.addType("java.util", "Map")
	entry := cp.addType("java.util", "Map$Entry")

	r := NewResolver(newJDK(t)).WithClasspath(cp)
	qn, ok, ambiguous := r.ResolveQualifiedTypeInScope(g, scope, "Map.Entry")
	require.True(t, ok)
	require.False(t, ambiguous)
	require.Equal(t, entry, qn)
}

func TestResolveNameOnDemandImportAmbiguousAcrossTwoStarImports(t *testing.T) {
	tree := parseTree(t, "import com.a.*;\nimport com.b.*;\n\nclass C {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	cp := newTestClasspath()
	cp.addType("com.a", "Widget")
	cp.addType("com.b", "Widget")

	r := NewResolver(newJDK(t)).WithClasspath(cp)
	res, ok := r.ResolveName(g, scope, "Widget")
	require.True(t, ok, "an ambiguous on-demand import still resolves to a best guess")
	require.True(t, res.Ambiguous)
}

func TestResolveNameOnDemandImportUnambiguousWhenOnlyOneMatches(t *testing.T) {
	tree := parseTree(t, "import com.a.*;\nimport com.b.*;\n\nclass C {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	cp := newTestClasspath()
	cp.addType("com.a", "Widget")

	r := NewResolver(newJDK(t)).WithClasspath(cp)
	res, ok := r.ResolveName(g, scope, "Widget")
	require.True(t, ok)
	require.False(t, res.Ambiguous)
	require.Equal(t, "com.a.Widget", res.TypeName)
}

func TestResolveNameClassTypeParamInMethodScope(t *testing.T) {
	tree := parseTree(t, "class C<T> {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))
	res, ok := r.ResolveName(g, scope, "T")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "T"}, res)
}

func TestResolveNameMethodTypeParamAlongsideClassTypeParam(t *testing.T) {
	tree := parseTree(t, "class C<T> {\n    <U> void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))

	classTP, ok := r.ResolveName(g, scope, "T")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "T"}, classTP)

	methodTP, ok := r.ResolveName(g, scope, "U")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "U"}, methodTP)
}

func TestResolveNameTypeParamShadowsImportedType(t *testing.T) {
	tree := parseTree(t, "import java.util.List;\n\nclass C<List> {\n    void m() {}\n}\n")
	g := BuildScopes(tree)
	scope := methodScope(t, g, tree, "m")

	r := NewResolver(newJDK(t))
	res, ok := r.ResolveName(g, scope, "List")
	require.True(t, ok)
	require.Equal(t, Resolution{Kind: ResolutionType, TypeName: "List"}, res)
}
