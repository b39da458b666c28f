package flow

import "nova/hir"

// UnassignedUse is one read of a local variable flow could not prove was
// assigned on every path reaching it. Corresponds to spec §4.10's
// FLOW_UNASSIGNED.
type UnassignedUse struct {
	Stmt  hir.StmtId
	Local hir.LocalId
	Name  string
}

// DefiniteAssignment runs a forward must-reach dataflow over g: a local is
// "assigned" at a point iff every path from the entry assigns it first.
// preAssigned names locals that are assigned before the body even starts —
// method parameters, which hir does not model as Body.Locals entries (see
// hir.MethodItem.Params), so they would otherwise look permanently
// unassigned.
//
// Reads of names that are not declared locals in this body (fields,
// unresolved identifiers, parameters already covered by preAssigned) are
// never flagged — that is resolve/typeck's job, not flow's; flow only
// tracks the bindings it can see in Body.Locals.
func DefiniteAssignment(g *Graph, body *hir.Body, preAssigned []string) []UnassignedUse {
	if body == nil || !g.HasEntry {
		return nil
	}

	universe := make(map[string]bool, body.Locals.Len())
	nameToLocal := make(map[string]hir.LocalId, body.Locals.Len())
	for i := 0; i < body.Locals.Len(); i++ {
		name := body.Locals.Get(uint32(i)).Name
		universe[name] = true
		nameToLocal[name] = hir.LocalId(i)
	}

	preAssignedSet := make(map[string]bool, len(preAssigned))
	for _, n := range preAssigned {
		preAssignedSet[n] = true
	}

	predsOf := preds(g)

	type nodeInfo struct{ uses, defs []string }
	infos := make([]nodeInfo, len(g.Nodes))
	for i, n := range g.Nodes {
		u, d := usesAndDefs(body, body.Stmts.Get(uint32(n.Stmt)))
		infos[i] = nodeInfo{uses: u, defs: d}
	}

	full := func() map[string]bool {
		m := make(map[string]bool, len(universe))
		for k := range universe {
			m[k] = true
		}
		return m
	}

	out := make([]map[string]bool, len(g.Nodes))
	for i := range out {
		out[i] = full()
	}

	inAt := func(n NodeId, out []map[string]bool) map[string]bool {
		if n == g.Entry {
			return cloneSet(preAssignedSet)
		}
		ps := predsOf[n]
		if len(ps) == 0 {
			return cloneSet(preAssignedSet)
		}
		in := cloneSet(out[ps[0].From])
		for _, p := range ps[1:] {
			in = intersectSet(in, out[p.From])
		}
		return in
	}

	for pass, changed := 0, true; changed && pass < len(g.Nodes)+2; pass++ {
		changed = false
		for i := range g.Nodes {
			in := inAt(NodeId(i), out)
			newOut := cloneSet(in)
			for _, d := range infos[i].defs {
				newOut[d] = true
			}
			if !setEqual(newOut, out[i]) {
				out[i] = newOut
				changed = true
			}
		}
	}

	var result []UnassignedUse
	for i := range g.Nodes {
		in := inAt(NodeId(i), out)
		for _, name := range infos[i].uses {
			if !universe[name] || preAssignedSet[name] || in[name] {
				continue
			}
			result = append(result, UnassignedUse{Stmt: g.Nodes[i].Stmt, Local: nameToLocal[name], Name: name})
		}
	}
	return result
}

func cloneSet(s map[string]bool) map[string]bool {
	m := make(map[string]bool, len(s))
	for k, v := range s {
		m[k] = v
	}
	return m
}

func intersectSet(a, b map[string]bool) map[string]bool {
	m := make(map[string]bool)
	for k := range a {
		if b[k] {
			m[k] = true
		}
	}
	return m
}

func setEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
