package typeck

import (
	"strings"

	"nova/diagnostic"
	"nova/resolve"
	"nova/text"
	"nova/types"
)

var primitiveNames = map[string]types.PrimitiveKind{
	"boolean": types.Boolean,
	"byte":    types.Byte,
	"short":   types.Short,
	"char":    types.Char,
	"int":     types.Int,
	"long":    types.Long,
	"float":   types.Float,
	"double":  types.Double,
}

// resolveTypeText turns one of hir's raw TypeText strings into a types.Type,
// resolving class names against scope via resolver and interning/looking
// them up in store. span anchors the unresolved-type diagnostic (if any) to
// the identifier's own source range rather than the whole declaration, per
// original_source's unresolved_signature_types_are_anchored expectation.
//
// A best-effort parse: type arguments ("<...>") are stripped rather than
// modeled, matching subtype.go's "best-effort generics" framing; only the
// trailing "[]" array-dimension suffix is structurally represented.
func (c *Checker) resolveTypeText(scope resolve.ScopeId, raw string, span text.Range) (types.Type, *diagnostic.Diagnostic) {
	name := strings.TrimSpace(raw)
	if name == "" || name == "void" {
		return types.Void(), nil
	}

	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(name[:len(name)-2])
		dims++
	}

	base, diag := c.resolveBaseType(scope, name, span)
	for i := 0; i < dims; i++ {
		base = types.ArrayType(base)
	}
	return base, diag
}

func (c *Checker) resolveBaseType(scope resolve.ScopeId, name string, span text.Range) (types.Type, *diagnostic.Diagnostic) {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	if p, ok := primitiveNames[name]; ok {
		return types.PrimitiveType(p), nil
	}
	if name == "var" {
		return types.Unknown(), nil
	}

	qualified, ok, ambiguous := c.resolver.ResolveQualifiedTypeInScope(c.scopes, scope, name)
	if !ok {
		d := diagnostic.Diagnostic{
			Code:     CodeUnresolvedType,
			Severity: diagnostic.SeverityError,
			Message:  "cannot resolve type " + name,
			Span:     span,
		}
		return types.ErrorType(), &d
	}
	if ambiguous {
		d := diagnostic.Diagnostic{
			Code:     CodeAmbiguousImport,
			Severity: diagnostic.SeverityError,
			Message:  "reference to " + name + " is ambiguous across on-demand imports",
			Span:     span,
		}
		return types.ErrorType(), &d
	}

	if id, ok := c.store.LookupClass(qualified); ok {
		return types.ClassType(id), nil
	}
	// Resolved against an import/same-package/JDK name the store hasn't
	// interned yet (a JDK or classpath class whose members this build
	// doesn't model) — intern a nameless stub so the type is at least
	// nominally known, rather than reporting unresolved-type for a name
	// resolve itself already vouched for.
	id := c.store.InternClass(types.ClassDef{Name: qualified})
	return types.ClassType(id), nil
}
