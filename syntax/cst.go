package syntax

import "nova/text"

// NodeKind identifies a CST node's grammar production.
type NodeKind int

const (
	NodeCompilationUnit NodeKind = iota
	NodePackageDecl
	NodeImportDecl
	NodeClassDecl
	NodeInterfaceDecl
	NodeEnumDecl
	NodeRecordDecl
	NodeFieldDecl
	NodeMethodDecl
	NodeParam
	NodeBlock
	NodeModifierList
	NodeTypeParamList
	NodeTypeRef
	NodeIdentifierExpr
	NodeLiteralExpr
	NodeBinaryExpr
	NodeUnaryExpr
	NodeCallExpr
	NodeFieldAccessExpr
	NodeAssignExpr
	NodeNewExpr
	NodeLocalVarDecl
	NodeIfStmt
	NodeWhileStmt
	NodeForStmt
	NodeReturnStmt
	NodeExprStmt
	NodeErrorNode // parser recovery: a span the parser could not make sense of
)

// Node is a CST tree node. Children are either further Nodes or raw Tokens
// (including trivia), in source order, so concatenating every Token's text
// in a depth-first walk reconstructs the file byte-for-byte (spec §4.5's
// losslessness requirement).
type Node struct {
	Kind     NodeKind
	Span     text.Range
	Children []interface{} // *Node or Token
}

// Tokens returns every Token reachable from n, in source order, including
// trivia — used to verify round-trip losslessness in tests.
func (n *Node) Tokens() []Token {
	var out []Token
	n.walk(func(t Token) { out = append(out, t) })
	return out
}

func (n *Node) walk(fn func(Token)) {
	for _, c := range n.Children {
		switch v := c.(type) {
		case Token:
			fn(v)
		case *Node:
			v.walk(fn)
		}
	}
}

// Text reconstructs the exact original source text spanned by n.
func (n *Node) Text() string {
	var sb []byte
	for _, t := range n.Tokens() {
		if t.Span.Start < n.Span.Start {
			continue // leading trivia the parser attached ahead of n's first token
		}
		sb = append(sb, t.Text...)
	}
	return string(sb)
}

// FindFirst returns the first descendant node of the given kind in
// depth-first order, or nil.
func (n *Node) FindFirst(kind NodeKind) *Node {
	if n.Kind == kind {
		return n
	}
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			if found := child.FindFirst(kind); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindAll returns every descendant node of the given kind in depth-first
// order.
func (n *Node) FindAll(kind NodeKind) []*Node {
	var out []*Node
	n.collect(kind, &out)
	return out
}

func (n *Node) collect(kind NodeKind, out *[]*Node) {
	if n.Kind == kind {
		*out = append(*out, n)
	}
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			child.collect(kind, out)
		}
	}
}
