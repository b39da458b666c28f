package resolve

import (
	"strings"

	"nova/jdk"
)

// ResolutionKind distinguishes what a Resolution points at.
type ResolutionKind int

const (
	// ResolutionType is a type name: a declared type parameter (TypeName
	// holds the bare parameter name) or a class/interface/enum/record
	// (TypeName holds its dotted-and-$-nested qualified name).
	ResolutionType ResolutionKind = iota
)

// Resolution is what resolve_name/resolve_qualified_type found.
type Resolution struct {
	Kind     ResolutionKind
	TypeName string
	// Ambiguous is set when name matched more than one distinct type across
	// the file's on-demand imports (spec §4.8/§7's ambiguous-import): two
	// star-imported packages each declaring a same-named type, with no
	// single-type import or same-package declaration to break the tie. Set
	// only by findOnDemandImport; every earlier resolution step in
	// ResolveName's precedence chain is exact by construction and can never
	// be ambiguous.
	Ambiguous bool
}

// ClasspathIndex is the subset of classpath knowledge the resolver needs,
// satisfied by classpath.Index (through a small adapter) or a test double.
// Mirrors the original implementation's TypeIndex trait.
type ClasspathIndex interface {
	// ResolveType resolves a fully dotted-and-$-nested type name exactly.
	ResolveType(qualifiedDotted string) (string, bool)
	// ResolveTypeInPackage resolves a simple name within a package.
	ResolveTypeInPackage(packageName, simpleName string) (string, bool)
	// PackageExists reports whether any classpath entry contributes to
	// packageName.
	PackageExists(packageName string) bool
}

// Resolver resolves names against a ScopeGraph. A JDK index is always
// present (every workspace has exactly one); a classpath index is optional
// and added via WithClasspath once the workspace's classpath has loaded.
type Resolver struct {
	jdk       *jdk.Index
	classpath ClasspathIndex
}

// NewResolver builds a Resolver backed by jdkIndex, with no classpath yet.
func NewResolver(jdkIndex *jdk.Index) *Resolver {
	return &Resolver{jdk: jdkIndex}
}

// WithClasspath returns a copy of r that also consults cp for classpath
// (not JDK-bootstrap) type lookups.
func (r *Resolver) WithClasspath(cp ClasspathIndex) *Resolver {
	return &Resolver{jdk: r.jdk, classpath: cp}
}

// ResolveName resolves a bare identifier against scope's parent chain.
// Precedence (spec §4.8): enclosing type members (nested types) ->
// type parameters -> single-type imports -> same-package types ->
// on-demand imports -> java.lang.*. Local/parameter resolution is layered
// on top of this by typeck, which threads per-body locals through a child
// scope rooted at the method scope found here; it is not modeled in
// ScopeGraph itself.
func (r *Resolver) ResolveName(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	if res, ok := r.findNestedType(g, scope, name); ok {
		return res, true
	}
	if res, ok := findTypeParam(g, scope, name); ok {
		return res, true
	}
	if res, ok := r.findSingleImport(g, scope, name); ok {
		return res, true
	}
	if res, ok := r.findSamePackage(g, scope, name); ok {
		return res, true
	}
	if res, ok := r.findOnDemandImport(g, scope, name); ok {
		return res, true
	}
	if res, ok := r.findJavaLang(name); ok {
		return res, true
	}
	return Resolution{}, false
}

// ResolveQualifiedTypeInScope resolves a dotted qualified name (e.g.
// "Inner", "Map.Entry") against scope. The first segment resolves exactly
// as ResolveName would for a type; remaining segments are appended as
// "$"-nested binary-name components and re-resolved via the classpath (a
// classpath-indexed nested type like Map$Entry isn't visible any other
// way, since it was never a distinct top-level import or declaration in
// this file).
// The third return value reports whether parts[0] resolved ambiguously
// across on-demand imports (see Resolution.Ambiguous); the first return
// value still carries resolve's best guess (the first match found) so
// callers that ignore ambiguity keep working.
func (r *Resolver) ResolveQualifiedTypeInScope(g *ScopeGraph, scope ScopeId, qualified string) (string, bool, bool) {
	parts := strings.Split(qualified, ".")
	res, ok := r.ResolveName(g, scope, parts[0])
	if !ok {
		return "", false, false
	}
	base := res.TypeName
	if len(parts) == 1 {
		return base, true, res.Ambiguous
	}
	candidate := base + "$" + strings.Join(parts[1:], "$")
	if r.classpath != nil {
		if qn, ok := r.classpath.ResolveType(candidate); ok {
			return qn, true, res.Ambiguous
		}
	}
	return candidate, false, res.Ambiguous
}

func (r *Resolver) findNestedType(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	for id, has := scope, true; has; {
		s := g.Scopes[id]
		if s.Kind == ScopeType {
			if qn, ok := s.NestedTypes[name]; ok {
				return Resolution{Kind: ResolutionType, TypeName: qn}, true
			}
		}
		id, has = s.Parent, s.HasParent
	}
	return Resolution{}, false
}

func findTypeParam(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	for id, has := scope, true; has; {
		s := g.Scopes[id]
		for _, tp := range s.TypeParams {
			if tp == name {
				return Resolution{Kind: ResolutionType, TypeName: name}, true
			}
		}
		id, has = s.Parent, s.HasParent
	}
	return Resolution{}, false
}

func fileScopeOf(g *ScopeGraph, scope ScopeId) Scope {
	for id, has := scope, true; has; {
		s := g.Scopes[id]
		if s.Kind == ScopeFile {
			return s
		}
		id, has = s.Parent, s.HasParent
	}
	return g.Scopes[0]
}

func (r *Resolver) findSingleImport(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	file := fileScopeOf(g, scope)
	for _, imp := range file.Imports {
		if imp.OnDemand || imp.Static {
			continue
		}
		if simpleName(imp.Path) == name {
			return Resolution{Kind: ResolutionType, TypeName: imp.Path}, true
		}
	}
	return Resolution{}, false
}

func (r *Resolver) findSamePackage(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	if r.classpath == nil {
		return Resolution{}, false
	}
	file := fileScopeOf(g, scope)
	if qn, ok := r.classpath.ResolveTypeInPackage(file.PackageName, name); ok {
		return Resolution{Kind: ResolutionType, TypeName: qn}, true
	}
	return Resolution{}, false
}

// findOnDemandImport checks every "import pkg.*" in scope's file for a
// member named name, instead of stopping at the first hit, so two star
// imports that both declare name are detected as ambiguous (spec §4.8)
// rather than silently resolving to whichever import happened to come
// first in the file.
func (r *Resolver) findOnDemandImport(g *ScopeGraph, scope ScopeId, name string) (Resolution, bool) {
	file := fileScopeOf(g, scope)
	var matches []string
	for _, imp := range file.Imports {
		if !imp.OnDemand || imp.Static {
			continue
		}
		var qn string
		var ok bool
		if r.classpath != nil {
			qn, ok = r.classpath.ResolveTypeInPackage(imp.Path, name)
		}
		if !ok {
			qn, ok = r.jdkPackageLookup(imp.Path, name)
		}
		if !ok {
			continue
		}
		if !containsString(matches, qn) {
			matches = append(matches, qn)
		}
	}
	if len(matches) == 0 {
		return Resolution{}, false
	}
	return Resolution{Kind: ResolutionType, TypeName: matches[0], Ambiguous: len(matches) > 1}, true
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Resolver) findJavaLang(name string) (Resolution, bool) {
	if qn, ok := r.jdkPackageLookup("java.lang", name); ok {
		return Resolution{Kind: ResolutionType, TypeName: qn}, true
	}
	return Resolution{}, false
}

// jdkPackageLookup checks the JDK's well-known class table for
// packageName.name, since this module doesn't load a real JDK image (see
// jdk.Load's doc comment) and so can't enumerate an arbitrary package.
func (r *Resolver) jdkPackageLookup(packageName, name string) (string, bool) {
	if r.jdk == nil {
		return "", false
	}
	prefix := strings.ReplaceAll(packageName, ".", "/") + "/"
	for _, binaryName := range jdk.WellKnownClasses {
		if !strings.HasPrefix(binaryName, prefix) {
			continue
		}
		rest := binaryName[len(prefix):]
		if strings.Contains(rest, "/") {
			continue // a subpackage member, not packageName's own member
		}
		if rest == name {
			return strings.ReplaceAll(binaryName, "/", "."), true
		}
	}
	return "", false
}
