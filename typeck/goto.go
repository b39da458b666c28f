package typeck

import (
	"nova/hir"
	"nova/text"
	"nova/types"
)

// TypeAtOffsetDisplay is the "type at offset" goto helper original_source's
// typeck.rs names directly: it finds the innermost expression whose span
// contains offset and returns its inferred type formatted for display,
// without forcing a full-body diagnostic pass.
func (c *Checker) TypeAtOffsetDisplay(offset int) (string, bool) {
	ty, ok := c.typeAtOffset(offset)
	if !ok {
		return "", false
	}
	return types.FormatType(c.store, ty), true
}

// ResolveMethodCall is the companion goto helper: given a call expression
// already known to live in mid's body, it resolves the call the same way
// checkMethod would but with report=false, so a caller gets the answer
// without triggering unresolved-method/ambiguous-call diagnostics.
func (c *Checker) ResolveMethodCall(mid hir.MethodId, exprId hir.ExprId) (types.ResolvedMethod, bool) {
	m := c.tree.Method(mid)
	if m.BodyNode == nil {
		return types.ResolvedMethod{}, false
	}
	owner, ok := c.ownerOf(mid)
	if !ok {
		return types.ResolvedMethod{}, false
	}
	body := c.bodyOf(mid)
	env := newBodyEnv(c, owner, c.scopes.MethodScopes[mid], mid)
	ctx := &checkCtx{c: c, body: body, env: env}
	ctx.checkStmt(body.Root)

	e := body.Exprs.Get(uint32(exprId))
	if e.Kind != hir.ExprCall {
		return types.ResolvedMethod{}, false
	}
	_, resolved := ctx.resolveCall(e, false)
	if resolved == nil {
		return types.ResolvedMethod{}, false
	}
	return *resolved, true
}

// ownerOf finds the declaring item for mid by scanning every interned
// class's members — the reverse of the owner->mid direction sig.go's
// internSignatures already walks forward.
func (c *Checker) ownerOf(mid hir.MethodId) (hir.Item, bool) {
	for item := range c.classIds {
		for _, m := range c.tree.Members(item) {
			if m.Kind == hir.MemberMethod && m.Method == mid {
				return item, true
			}
		}
	}
	return hir.Item{}, false
}

// typeAtOffset finds the smallest expression span in any method body that
// contains offset, walks that body once to populate its local environment,
// and infers the expression's type in that environment.
func (c *Checker) typeAtOffset(offset int) (types.Type, bool) {
	var bestItem hir.Item
	var bestMethod hir.MethodId
	var bestExpr hir.ExprId
	bestLen := -1
	found := false

	for item := range c.classIds {
		for _, m := range c.tree.Members(item) {
			if m.Kind != hir.MemberMethod {
				continue
			}
			method := c.tree.Method(m.Method)
			if method.BodyNode == nil {
				continue
			}
			body := c.bodyOf(m.Method)
			for i, e := range body.Exprs.All() {
				if !spanContainsOffset(e.Span, offset) {
					continue
				}
				l := int(e.Span.End) - int(e.Span.Start)
				if !found || l < bestLen {
					found = true
					bestLen = l
					bestItem = item
					bestMethod = m.Method
					bestExpr = hir.ExprId(i)
				}
			}
		}
	}
	if !found {
		return types.Type{}, false
	}

	body := c.bodyOf(bestMethod)
	env := newBodyEnv(c, bestItem, c.scopes.MethodScopes[bestMethod], bestMethod)
	ctx := &checkCtx{c: c, body: body, env: env}
	ctx.checkStmt(body.Root)

	// A method name's own span (e.g. the "substring" in "x".substring(1))
	// belongs to its ExprFieldAccess/ExprName node, which by itself only
	// knows how to look up a field — resolve the enclosing call instead so
	// the offset shows the call's return type rather than "unresolved".
	if callID, ok := calleeToCall(body, bestExpr); ok {
		call := body.Exprs.Get(uint32(callID))
		ty, _ := ctx.resolveCall(call, false)
		return ty, true
	}
	return ctx.inferExpr(bestExpr), true
}

// calleeToCall reports the ExprCall (if any) that uses target as its callee.
func calleeToCall(body *hir.Body, target hir.ExprId) (hir.ExprId, bool) {
	for i, e := range body.Exprs.All() {
		if e.Kind == hir.ExprCall && e.Callee == target {
			return hir.ExprId(i), true
		}
	}
	return 0, false
}

func spanContainsOffset(span text.Range, offset int) bool {
	return int(span.Start) <= offset && offset <= int(span.End)
}
