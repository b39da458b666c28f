package flow

import "nova/hir"

// collectNames walks expr's subexpression tree and appends the Name of
// every ExprName it finds to out, skipping the synthetic instanceof "right
// operand" a Binary expr sometimes carries only as TypeText (see
// hir.Body.lowerBinary). It does not distinguish a use from a definition —
// callers needing that distinction (assignment targets) special-case the
// top-level expression before recursing into its operands.
func collectNames(body *hir.Body, id hir.ExprId, out *[]string) {
	e := body.Exprs.Get(uint32(id))
	switch e.Kind {
	case hir.ExprName:
		*out = append(*out, e.Name)
	case hir.ExprLiteral:
	case hir.ExprBinary:
		collectNames(body, e.Lhs, out)
		if e.TypeText == "" { // empty means a real Rhs, not instanceof's bare type ref
			collectNames(body, e.Rhs, out)
		}
	case hir.ExprUnary, hir.ExprPostfix:
		collectNames(body, e.Operand, out)
	case hir.ExprAssign:
		collectNames(body, e.Lhs, out)
		collectNames(body, e.Rhs, out)
	case hir.ExprCall:
		collectNames(body, e.Callee, out)
		for _, a := range e.Args {
			collectNames(body, a, out)
		}
	case hir.ExprFieldAccess:
		collectNames(body, e.Receiver, out)
	case hir.ExprArrayAccess:
		collectNames(body, e.Receiver, out)
		collectNames(body, e.Index, out)
	case hir.ExprNew:
		for _, a := range e.Args {
			collectNames(body, a, out)
		}
	case hir.ExprCast:
		collectNames(body, e.Operand, out)
	case hir.ExprInvalid:
		for _, c := range e.Children {
			collectNames(body, c, out)
		}
	}
}

func collectUses(body *hir.Body, id hir.ExprId) []string {
	var out []string
	collectNames(body, id, &out)
	return out
}

// exprName returns id's ExprName text, if it is one.
func exprName(body *hir.Body, id hir.ExprId) (string, bool) {
	e := body.Exprs.Get(uint32(id))
	if e.Kind != hir.ExprName {
		return "", false
	}
	return e.Name, true
}

// usesAndDefs extracts the local-variable names a statement reads and the
// one it (possibly) assigns, used by definiteassignment.go's dataflow. An
// assignment's target counts as a def only when it is a bare name (`x = …`,
// not `a.x = …` or `a[i] = …`); a compound assignment (`x += …`) also reads
// its target, since the operation needs the prior value.
func usesAndDefs(body *hir.Body, s hir.Stmt) (uses []string, defs []string) {
	switch s.Kind {
	case hir.StmtLocalVar:
		if s.HasInitializer {
			uses = collectUses(body, s.Initializer)
			defs = []string{body.Locals.Get(uint32(s.Local)).Name}
		}
	case hir.StmtExpr:
		if !s.HasExpr {
			return nil, nil
		}
		e := body.Exprs.Get(uint32(s.Expr))
		if e.Kind != hir.ExprAssign {
			return collectUses(body, s.Expr), nil
		}
		name, isName := exprName(body, e.Lhs)
		if e.Op == "=" {
			uses = collectUses(body, e.Rhs)
			if !isName {
				uses = append(uses, collectUses(body, e.Lhs)...)
			}
		} else {
			uses = collectUses(body, e.Lhs)
			uses = append(uses, collectUses(body, e.Rhs)...)
		}
		if isName {
			defs = []string{name}
		}
	case hir.StmtReturn:
		if s.HasExpr {
			uses = collectUses(body, s.Expr)
		}
	case hir.StmtIf, hir.StmtWhile:
		if s.HasExpr {
			uses = collectUses(body, s.Expr)
		}
	case hir.StmtFor:
		if s.HasExpr {
			uses = collectUses(body, s.Expr)
		}
		for _, uid := range s.ForUpdate {
			uses = append(uses, collectUses(body, uid)...)
		}
	}
	return uses, defs
}
