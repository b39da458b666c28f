package typeck

import (
	"strings"

	"nova/diagnostic"
	"nova/hir"
	"nova/resolve"
	"nova/text"
	"nova/types"
)

// allItems flattens tree's top-level and nested type declarations into one
// list, depth-first, the same order resolve.BuildScopes visits them in.
func allItems(tree *hir.ItemTree) []hir.Item {
	var out []hir.Item
	var walk func(item hir.Item)
	walk = func(item hir.Item) {
		out = append(out, item)
		for _, m := range tree.Members(item) {
			if m.Kind == hir.MemberNestedType {
				walk(m.Nested)
			}
		}
	}
	for _, item := range tree.Items {
		walk(item)
	}
	return out
}

// itemSpan returns the declaration's own span, used to anchor diagnostics
// about a supertype/interface clause — hir doesn't keep per-identifier spans
// for those (only ParamItem/FieldItem/MethodItem's return type do), so the
// whole declaration is the closest anchor available.
func (c *Checker) itemSpan(item hir.Item) text.Range {
	var n *hir.AstId
	switch item.Kind {
	case hir.ItemClass:
		n = &c.tree.Class(hir.ClassId(item.Index)).AstId
	case hir.ItemInterface:
		n = &c.tree.Interface(hir.InterfaceId(item.Index)).AstId
	case hir.ItemEnum:
		n = &c.tree.Enum(hir.EnumId(item.Index)).AstId
	case hir.ItemRecord:
		n = &c.tree.Record(hir.RecordId(item.Index)).AstId
	}
	if n == nil || n.Node == nil {
		return text.Range{}
	}
	return n.Node.Span
}

// internSignatures interns a stub ClassId for every declared type (so
// cross-references between sibling types in the same file resolve to a
// stable id regardless of declaration order), then fills in each stub's
// supertype/interfaces/methods/fields from the item tree.
func (c *Checker) internSignatures() {
	items := allItems(c.tree)

	for _, item := range items {
		scope := c.scopes.TypeScopes[item]
		qualified := c.scopes.Scopes[scope].QualifiedTypeName
		id := c.store.InternClass(types.ClassDef{Name: qualified})
		c.classIds[item] = id
	}

	for _, item := range items {
		c.fillSignature(item)
	}
}

func (c *Checker) fillSignature(item hir.Item) {
	scope := c.scopes.TypeScopes[item]
	id := c.classIds[item]
	def, _ := c.store.Class(id)
	def.Name = c.scopes.Scopes[scope].QualifiedTypeName

	var superText string
	var ifaceTexts []string
	switch item.Kind {
	case hir.ItemClass:
		ci := c.tree.Class(hir.ClassId(item.Index))
		superText = ci.SuperClass
		ifaceTexts = ci.Interfaces
	case hir.ItemInterface:
		ii := c.tree.Interface(hir.InterfaceId(item.Index))
		ifaceTexts = ii.Interfaces
	case hir.ItemEnum:
		ei := c.tree.Enum(hir.EnumId(item.Index))
		ifaceTexts = ei.Interfaces
	case hir.ItemRecord:
		ri := c.tree.Record(hir.RecordId(item.Index))
		ifaceTexts = ri.Interfaces
	}

	span := c.itemSpan(item)
	if superText != "" {
		st, diag := c.resolveTypeText(scope, superText, span)
		if diag != nil {
			c.sigDiagnostics = append(c.sigDiagnostics, *diag)
		}
		def.SuperClass = &st
	}
	for _, it := range ifaceTexts {
		ty, diag := c.resolveTypeText(scope, it, span)
		if diag != nil {
			c.sigDiagnostics = append(c.sigDiagnostics, *diag)
		}
		def.Interfaces = append(def.Interfaces, ty)
	}

	for _, m := range c.tree.Members(item) {
		switch m.Kind {
		case hir.MemberMethod:
			c.fillMethod(item, scope, m.Method, def)
		case hir.MemberField:
			c.fillField(scope, m.Field, def)
		}
	}
}

func (c *Checker) fillMethod(owner hir.Item, scope resolve.ScopeId, mid hir.MethodId, def *types.ClassDef) {
	m := c.tree.Method(mid)

	isCtor := m.ReturnType == "" && m.Name == c.scopes.Scopes[scope].TypeName
	var retType types.Type
	if isCtor {
		retType = types.Void()
	} else {
		var diag *diagnostic.Diagnostic
		retType, diag = c.resolveTypeText(scope, m.ReturnType, m.ReturnTypeSpan)
		if diag != nil {
			c.sigDiagnostics = append(c.sigDiagnostics, *diag)
		}
	}

	var params []types.Type
	isVarargs := false
	for i, p := range m.Params {
		pt, pdiag := c.resolveTypeText(scope, p.TypeText, p.TypeSpan)
		if pdiag != nil {
			c.sigDiagnostics = append(c.sigDiagnostics, *pdiag)
		}
		if p.Variadic {
			pt = types.ArrayType(pt)
			if i == len(m.Params)-1 {
				isVarargs = true
			}
		}
		params = append(params, pt)
	}

	name := m.Name
	if isCtor {
		name = types.ConstructorName
	}

	md := types.MethodDef{
		Name:       name,
		ReturnType: retType,
		Params:     params,
		IsVarargs:  isVarargs,
		IsStatic:   hasModifier(m.Modifiers, "static"),
	}
	for _, tp := range m.TypeParams {
		md.TypeParams = append(md.TypeParams, c.store.InternTypeParam(types.TypeParamDef{Name: tp}))
	}
	def.Methods = append(def.Methods, md)
	c.methodIndex[mid] = methodBinding{owner: c.classIds[owner], index: len(def.Methods) - 1}
}

func (c *Checker) fillField(scope resolve.ScopeId, fid hir.FieldId, def *types.ClassDef) {
	f := c.tree.Field(fid)
	ty, diag := c.resolveTypeText(scope, f.TypeText, f.TypeSpan)
	if diag != nil {
		c.sigDiagnostics = append(c.sigDiagnostics, *diag)
	}
	def.Fields = append(def.Fields, types.FieldDef{
		Name:     f.Name,
		Type:     ty,
		IsStatic: hasModifier(f.Modifiers, "static"),
	})
	c.fieldOwner[fid] = def
}

func hasModifier(mods []string, name string) bool {
	for _, m := range mods {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}
