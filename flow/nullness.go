package flow

import "nova/hir"

// NullState is a local's best-known nullness at some program point.
type NullState int

const (
	// NullUnknown covers both "never looked at" and "branches disagreed" —
	// flow never warns on it. Collapsing disagreement into Unknown rather
	// than a separate "maybe-null" bucket trades recall for zero false
	// positives, matching spec §4.10's degrade-to-unknown failure model.
	NullUnknown NullState = iota
	NullNonNull
	NullNull
)

// NullDeref is one dereference (`x.f`, `x[i]`, `x.m(...)`) flow proved
// reaches a definitely-null receiver. Corresponds to spec §4.10's
// FLOW_NULL_DEREF.
type NullDeref struct {
	Stmt hir.StmtId
	Name string
}

// Nullness runs a forward dataflow tracking each local's NullState,
// narrowing across `if (x != null)` / `if (x == null)` branches, and
// reports every definite-null dereference it finds.
func Nullness(g *Graph, body *hir.Body) []NullDeref {
	if body == nil || !g.HasEntry {
		return nil
	}
	predsOf := preds(g)

	out := make([]map[string]NullState, len(g.Nodes))
	for i := range out {
		out[i] = map[string]NullState{}
	}

	inFor := func(to NodeId, out []map[string]NullState) map[string]NullState {
		ps := predsOf[to]
		if len(ps) == 0 {
			return map[string]NullState{}
		}
		merged := narrowedOut(body, g, ps[0], out[ps[0].From])
		for _, p := range ps[1:] {
			merged = joinState(merged, narrowedOut(body, g, p, out[p.From]))
		}
		return merged
	}

	var derefs []NullDeref
	for pass, changed := 0, true; changed && pass < len(g.Nodes)+2; pass++ {
		changed = false
		derefs = nil
		for i := range g.Nodes {
			var in map[string]NullState
			if NodeId(i) == g.Entry {
				in = map[string]NullState{}
			} else {
				in = inFor(NodeId(i), out)
			}
			s := body.Stmts.Get(uint32(g.Nodes[i].Stmt))
			newOut, found := transferNullness(body, s, in)
			derefs = append(derefs, found...)
			if !stateEqual(newOut, out[i]) {
				out[i] = newOut
				changed = true
			}
		}
	}
	return derefs
}

func stateEqual(a, b map[string]NullState) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func joinState(a, b map[string]NullState) map[string]NullState {
	m := make(map[string]NullState, len(a))
	for k, av := range a {
		if bv, ok := b[k]; ok && bv == av {
			m[k] = av
		} else {
			m[k] = NullUnknown
		}
	}
	return m
}

// narrowPattern recognizes `name != null` / `name == null` so narrowPattern's
// caller can refine the state carried down the then/else edge instead of
// propagating one merged state to both successors.
func narrowPattern(body *hir.Body, cond hir.ExprId) (name string, whenTrue, whenFalse NullState, ok bool) {
	e := body.Exprs.Get(uint32(cond))
	if e.Kind != hir.ExprBinary || (e.Op != "!=" && e.Op != "==") {
		return "", 0, 0, false
	}
	lhsName, lhsIsName := exprName(body, e.Lhs)
	lhsIsNull := isNullLiteral(body, e.Lhs)
	rhsName, rhsIsName := exprName(body, e.Rhs)
	rhsIsNull := e.TypeText == "" && isNullLiteral(body, e.Rhs)

	var target string
	switch {
	case lhsIsName && rhsIsNull:
		target = lhsName
	case rhsIsName && lhsIsNull:
		target = rhsName
	default:
		return "", 0, 0, false
	}
	if e.Op == "!=" {
		return target, NullNonNull, NullNull, true
	}
	return target, NullNull, NullNonNull, true
}

func isNullLiteral(body *hir.Body, id hir.ExprId) bool {
	e := body.Exprs.Get(uint32(id))
	return e.Kind == hir.ExprLiteral && e.Literal == "null"
}

// narrowedOut returns a predecessor's OUT state, refined along the specific
// edge label that led here: an if/while's then-edge sees the narrowed
// "condition true" state, its else-edge the narrowed "condition false"
// state, so `if (x != null) { x.foo(); }` doesn't flag the call even though
// x was merely Unknown before the check.
func narrowedOut(body *hir.Body, g *Graph, p predEdge, out map[string]NullState) map[string]NullState {
	if p.Label != EdgeThen && p.Label != EdgeElse {
		return out
	}
	s := body.Stmts.Get(uint32(g.Nodes[p.From].Stmt))
	if !s.HasExpr {
		return out
	}
	name, whenTrue, whenFalse, ok := narrowPattern(body, s.Expr)
	if !ok {
		return out
	}
	refined := make(map[string]NullState, len(out)+1)
	for k, v := range out {
		refined[k] = v
	}
	if p.Label == EdgeThen {
		refined[name] = whenTrue
	} else {
		refined[name] = whenFalse
	}
	return refined
}

// transferNullness computes a statement's effect on the null-state map and
// reports any definite-null dereferences found while evaluating it.
func transferNullness(body *hir.Body, s hir.Stmt, in map[string]NullState) (map[string]NullState, []NullDeref) {
	out := make(map[string]NullState, len(in))
	for k, v := range in {
		out[k] = v
	}
	var derefs []NullDeref

	eval := func(id hir.ExprId) NullState {
		st, d := evalNullness(body, out, id)
		derefs = append(derefs, d...)
		return st
	}

	switch s.Kind {
	case hir.StmtLocalVar:
		name := body.Locals.Get(uint32(s.Local)).Name
		if s.HasInitializer {
			out[name] = eval(s.Initializer)
		} else {
			out[name] = NullUnknown
		}
	case hir.StmtExpr:
		if !s.HasExpr {
			return out, derefs
		}
		e := body.Exprs.Get(uint32(s.Expr))
		if e.Kind == hir.ExprAssign {
			val := eval(e.Rhs)
			if e.Op != "=" {
				// compound assign also reads the current value first.
				eval(e.Lhs)
				val = NullUnknown
			}
			if name, ok := exprName(body, e.Lhs); ok {
				out[name] = val
			} else {
				eval(e.Lhs)
			}
		} else {
			eval(s.Expr)
		}
	case hir.StmtReturn:
		if s.HasExpr {
			eval(s.Expr)
		}
	case hir.StmtIf, hir.StmtWhile:
		if s.HasExpr {
			eval(s.Expr)
		}
	case hir.StmtFor:
		if s.HasExpr {
			eval(s.Expr)
		}
		for _, uid := range s.ForUpdate {
			eval(uid)
		}
	}
	return out, derefs
}

// evalNullness evaluates id's resulting nullness against the current state
// map and collects any definite-null dereferences encountered along the way.
func evalNullness(body *hir.Body, state map[string]NullState, id hir.ExprId) (NullState, []NullDeref) {
	e := body.Exprs.Get(uint32(id))
	var derefs []NullDeref
	sub := func(id hir.ExprId) NullState {
		st, d := evalNullness(body, state, id)
		derefs = append(derefs, d...)
		return st
	}
	checkDeref := func(receiver hir.ExprId) {
		if name, ok := exprName(body, receiver); ok {
			if state[name] == NullNull {
				derefs = append(derefs, NullDeref{Name: name})
			}
		} else {
			sub(receiver)
		}
	}

	switch e.Kind {
	case hir.ExprLiteral:
		if e.Literal == "null" {
			return NullNull, derefs
		}
		return NullNonNull, derefs
	case hir.ExprName:
		if st, ok := state[e.Name]; ok {
			return st, derefs
		}
		return NullUnknown, derefs
	case hir.ExprNew:
		for _, a := range e.Args {
			sub(a)
		}
		return NullNonNull, derefs
	case hir.ExprBinary:
		sub(e.Lhs)
		if e.TypeText == "" {
			sub(e.Rhs)
		}
		if e.Op == "+" {
			return NullNonNull, derefs
		}
		return NullUnknown, derefs
	case hir.ExprUnary, hir.ExprPostfix:
		sub(e.Operand)
		return NullUnknown, derefs
	case hir.ExprCast:
		return sub(e.Operand), derefs
	case hir.ExprAssign:
		sub(e.Lhs)
		return sub(e.Rhs), derefs
	case hir.ExprCall:
		// Callee is itself the method-access expression (`x.m` in `x.m()`);
		// evaluating it as an ordinary subexpression already walks into the
		// ExprFieldAccess case below and checks the real receiver there.
		sub(e.Callee)
		for _, a := range e.Args {
			sub(a)
		}
		return NullUnknown, derefs
	case hir.ExprFieldAccess:
		checkDeref(e.Receiver)
		return NullUnknown, derefs
	case hir.ExprArrayAccess:
		checkDeref(e.Receiver)
		sub(e.Index)
		return NullUnknown, derefs
	case hir.ExprInvalid:
		for _, c := range e.Children {
			sub(c)
		}
		return NullUnknown, derefs
	}
	return NullUnknown, derefs
}
