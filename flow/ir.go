// Package flow lowers a hir.Body into a control-flow graph and runs the
// per-body analyses spec §4.10 names on it: reachability, definite
// assignment, and best-effort nullness. Like resolve and types, every
// analysis here is written to degrade rather than panic: ill-typed or
// incomplete input collapses to "no finding" on the affected subtree instead
// of raising, matching spec §4.10's failure model.
package flow

import "nova/hir"

// NodeId indexes into a Graph's Nodes slice.
type NodeId int

// EdgeLabel distinguishes a node's successor edges so nullness narrowing
// (`if (x != null)`) can tell the then-edge from the else-edge instead of
// propagating one merged state down both branches.
type EdgeLabel int

const (
	EdgeSeq EdgeLabel = iota
	EdgeThen
	EdgeElse
	EdgeLoopBody
	EdgeLoopExit
)

// Edge is one outgoing control-flow edge.
type Edge struct {
	To    NodeId
	Label EdgeLabel
}

// Node is one flow-graph node, corresponding to exactly one hir.Stmt
// (structural statements like blocks/if/while/for get a node of their own
// representing the block entry or condition test, in addition to their
// children's nodes).
type Node struct {
	Stmt hir.StmtId
	Out  []Edge
}

// Graph is one method or initializer body's control-flow graph.
type Graph struct {
	Nodes    []Node
	Entry    NodeId
	HasEntry bool
}

func (g *Graph) newNode(id hir.StmtId) NodeId {
	nid := NodeId(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{Stmt: id})
	return nid
}

func (g *Graph) link(from NodeId, label EdgeLabel, to NodeId) {
	g.Nodes[from].Out = append(g.Nodes[from].Out, Edge{To: to, Label: label})
}

// predEdge is one incoming edge as seen from the predecessor side.
type predEdge struct {
	From  NodeId
	Label EdgeLabel
}

// preds inverts Graph's forward edges, needed by both dataflow analyses to
// find what feeds a join point.
func preds(g *Graph) map[NodeId][]predEdge {
	p := make(map[NodeId][]predEdge)
	for i, n := range g.Nodes {
		for _, e := range n.Out {
			p[e.To] = append(p[e.To], predEdge{From: NodeId(i), Label: e.Label})
		}
	}
	return p
}
