package flow

import "nova/hir"

// pendingEdge is an exit point produced while building a sub-statement: the
// node that needs an outgoing edge once the caller knows what comes next,
// and the label that edge should carry.
type pendingEdge struct {
	From  NodeId
	Label EdgeLabel
}

// Build lowers body into a Graph. A nil body (abstract/interface/native
// methods, which have no block to analyze) yields an empty, entry-less
// Graph; every analysis in this package treats that as "nothing to report"
// rather than an error.
func Build(body *hir.Body) *Graph {
	g := &Graph{}
	if body == nil {
		return g
	}
	entry, _ := g.buildStmt(body, body.Root)
	g.Entry = entry
	g.HasEntry = true
	return g
}

func (g *Graph) buildStmt(body *hir.Body, id hir.StmtId) (entry NodeId, exits []pendingEdge) {
	s := body.Stmts.Get(uint32(id))
	node := g.newNode(id)

	switch s.Kind {
	case hir.StmtBlock:
		return g.buildChain(body, node, s.Statements)

	case hir.StmtLocalVar, hir.StmtExpr, hir.StmtEmpty:
		return node, []pendingEdge{{From: node, Label: EdgeSeq}}

	case hir.StmtReturn:
		return node, nil // control never falls through a return

	case hir.StmtIf:
		var allExits []pendingEdge
		thenEntry, thenExits := g.buildStmt(body, s.Then)
		g.link(node, EdgeThen, thenEntry)
		allExits = append(allExits, thenExits...)
		if s.HasElse {
			elseEntry, elseExits := g.buildStmt(body, s.Else)
			g.link(node, EdgeElse, elseEntry)
			allExits = append(allExits, elseExits...)
		} else {
			// No else branch: a false condition falls straight through to
			// whatever follows the if.
			allExits = append(allExits, pendingEdge{From: node, Label: EdgeElse})
		}
		return node, allExits

	case hir.StmtWhile:
		bodyEntry, bodyExits := g.buildStmt(body, s.Body)
		g.link(node, EdgeLoopBody, bodyEntry)
		for _, pe := range bodyExits {
			g.link(pe.From, pe.Label, node)
		}
		return node, []pendingEdge{{From: node, Label: EdgeLoopExit}}

	case hir.StmtFor:
		initEntry, hasInit, initExits := g.buildStmtList(body, s.ForInit)
		bodyEntry, bodyExits := g.buildStmt(body, s.Body)
		g.link(node, EdgeLoopBody, bodyEntry)
		for _, pe := range bodyExits {
			g.link(pe.From, pe.Label, node)
		}
		if hasInit {
			for _, pe := range initExits {
				g.link(pe.From, pe.Label, node)
			}
			return initEntry, []pendingEdge{{From: node, Label: EdgeLoopExit}}
		}
		return node, []pendingEdge{{From: node, Label: EdgeLoopExit}}
	}

	return node, []pendingEdge{{From: node, Label: EdgeSeq}}
}

// buildChain links ids in sequence, starting from an already-allocated head
// node (a block's own node, used as a pass-through for an empty block).
func (g *Graph) buildChain(body *hir.Body, head NodeId, ids []hir.StmtId) (NodeId, []pendingEdge) {
	var prevExits []pendingEdge
	first := true
	for _, id := range ids {
		centry, cexits := g.buildStmt(body, id)
		if first {
			g.link(head, EdgeSeq, centry)
			first = false
		} else {
			for _, pe := range prevExits {
				g.link(pe.From, pe.Label, centry)
			}
		}
		prevExits = cexits
	}
	if first {
		return head, []pendingEdge{{From: head, Label: EdgeSeq}}
	}
	return head, prevExits
}

// buildStmtList is buildChain without a pre-allocated head node, used for a
// for-loop's init statements (which have no statement of their own to
// anchor a node on).
func (g *Graph) buildStmtList(body *hir.Body, ids []hir.StmtId) (entry NodeId, has bool, exits []pendingEdge) {
	var prevExits []pendingEdge
	first := true
	for _, id := range ids {
		centry, cexits := g.buildStmt(body, id)
		if first {
			entry = centry
			has = true
			first = false
		} else {
			for _, pe := range prevExits {
				g.link(pe.From, pe.Label, centry)
			}
		}
		prevExits = cexits
	}
	return entry, has, prevExits
}
