package hir

import (
	"strings"

	"nova/syntax"
	"nova/text"
)

// StmtKind identifies which fields of a Stmt are meaningful, following the
// flat tagged-struct idiom used elsewhere in this codebase (see
// classfile.ConstantPoolEntry) rather than a Go interface per variant.
type StmtKind int

const (
	StmtBlock StmtKind = iota
	StmtLocalVar
	StmtExpr
	StmtReturn
	StmtIf
	StmtWhile
	StmtFor
	StmtEmpty
)

// Stmt is one lowered statement. Only the fields relevant to Kind are
// populated; the rest are zero.
type Stmt struct {
	Kind  StmtKind
	Span  text.Range

	Statements []StmtId // StmtBlock

	Local          LocalId // StmtLocalVar
	HasInitializer bool
	Initializer    ExprId

	Expr    ExprId // StmtExpr, StmtReturn (if HasExpr), StmtIf/While condition
	HasExpr bool

	Then StmtId // StmtIf
	Else StmtId
	HasElse bool

	Body StmtId // StmtWhile, StmtFor

	ForInit   []StmtId // StmtFor
	ForUpdate []ExprId
}

// ExprKind identifies which fields of an Expr are meaningful.
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprPostfix
	ExprAssign
	ExprCall
	ExprFieldAccess
	ExprArrayAccess
	ExprNew
	ExprCast
	ExprInvalid
)

// Expr is one lowered expression.
type Expr struct {
	Kind ExprKind
	Span text.Range

	Name     string // ExprName, ExprFieldAccess member name
	Literal  string // ExprLiteral raw text
	Op       string // ExprBinary/ExprUnary/ExprPostfix/ExprAssign operator text
	TypeText string // ExprCast, ExprNew

	Lhs, Rhs ExprId // ExprBinary, ExprAssign
	Operand  ExprId // ExprUnary, ExprPostfix, ExprCast
	Callee   ExprId // ExprCall
	Receiver ExprId // ExprFieldAccess, ExprArrayAccess (array)
	Index    ExprId // ExprArrayAccess

	Args []ExprId // ExprCall, ExprNew

	Children []ExprId // ExprInvalid: preserved subexpressions
}

// Local is one declared local variable binding; method parameters are not
// Locals.
type Local struct {
	Name     string
	TypeText string
	Span     text.Range
}

// Body is the lowered statement/expression graph for one method or
// initializer block.
type Body struct {
	Root   StmtId
	Stmts  Arena[Stmt]
	Exprs  Arena[Expr]
	Locals Arena[Local]
}

// LowerBody lowers a NodeBlock into a Body. A nil block (abstract/interface
// methods, native methods) yields nil.
func LowerBody(block *syntax.Node) *Body {
	if block == nil {
		return nil
	}
	b := &Body{}
	b.Root = b.lowerBlock(block)
	return b
}

func (b *Body) lowerBlock(n *syntax.Node) StmtId {
	s := Stmt{Kind: StmtBlock, Span: n.Span}
	for _, c := range n.Children {
		child, ok := c.(*syntax.Node)
		if !ok {
			continue
		}
		s.Statements = append(s.Statements, b.lowerStmt(child))
	}
	return StmtId(b.Stmts.Alloc(s))
}

func (b *Body) lowerStmt(n *syntax.Node) StmtId {
	switch n.Kind {
	case syntax.NodeBlock:
		return b.lowerBlock(n)
	case syntax.NodeLocalVarDecl:
		return b.lowerLocalVarDecl(n)
	case syntax.NodeIfStmt:
		return b.lowerIf(n)
	case syntax.NodeWhileStmt:
		return b.lowerWhile(n)
	case syntax.NodeForStmt:
		return b.lowerFor(n)
	case syntax.NodeReturnStmt:
		return b.lowerReturn(n)
	case syntax.NodeExprStmt:
		return b.lowerExprStmt(n)
	default:
		return StmtId(b.Stmts.Alloc(Stmt{Kind: StmtEmpty, Span: n.Span}))
	}
}

func (b *Body) lowerLocalVarDecl(n *syntax.Node) StmtId {
	var typeText, name string
	var init ExprId
	hasInit := false
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if v.Kind == syntax.NodeTypeRef && typeText == "" {
				typeText = strings.TrimSpace(v.Text())
			} else if isExprNode(v.Kind) {
				init = b.lowerExpr(v)
				hasInit = true
			}
		case syntax.Token:
			if v.Kind == syntax.KindIdentifier && name == "" {
				name = v.Text
			}
		}
	}
	local := b.Locals.Alloc(Local{Name: name, TypeText: typeText, Span: n.Span})
	return StmtId(b.Stmts.Alloc(Stmt{
		Kind: StmtLocalVar, Span: n.Span, Local: LocalId(local),
		HasInitializer: hasInit, Initializer: init,
	}))
}

func (b *Body) lowerIf(n *syntax.Node) StmtId {
	s := Stmt{Kind: StmtIf, Span: n.Span}
	var branches []*syntax.Node
	for _, c := range n.Children {
		node, ok := c.(*syntax.Node)
		if !ok {
			continue
		}
		if isExprNode(node.Kind) && !s.HasExpr {
			s.Expr = b.lowerExpr(node)
			s.HasExpr = true
			continue
		}
		branches = append(branches, node)
	}
	if len(branches) > 0 {
		s.Then = b.lowerStmt(branches[0])
	}
	if len(branches) > 1 {
		s.Else = b.lowerStmt(branches[1])
		s.HasElse = true
	}
	return StmtId(b.Stmts.Alloc(s))
}

func (b *Body) lowerWhile(n *syntax.Node) StmtId {
	s := Stmt{Kind: StmtWhile, Span: n.Span}
	for _, c := range n.Children {
		node, ok := c.(*syntax.Node)
		if !ok {
			continue
		}
		if isExprNode(node.Kind) && !s.HasExpr {
			s.Expr = b.lowerExpr(node)
			s.HasExpr = true
			continue
		}
		s.Body = b.lowerStmt(node)
	}
	return StmtId(b.Stmts.Alloc(s))
}

func (b *Body) lowerFor(n *syntax.Node) StmtId {
	// The parser emits the for-header's init/condition/update as a flat run
	// of nodes between the two header semicolons; a precise split needs
	// those semicolon positions, so walk tokens/children together.
	s := Stmt{Kind: StmtFor, Span: n.Span}
	semisSeen := 0
	var bodyNode *syntax.Node
	for _, c := range n.Children {
		switch v := c.(type) {
		case syntax.Token:
			if v.Kind == syntax.KindSemi {
				semisSeen++
			}
		case *syntax.Node:
			switch {
			case semisSeen == 0:
				if v.Kind == syntax.NodeTypeRef {
					continue // local-decl type in init; name is a bare token, skipped
				}
				if isExprNode(v.Kind) {
					s.ForInit = append(s.ForInit, StmtId(b.Stmts.Alloc(Stmt{
						Kind: StmtExpr, Span: v.Span, Expr: b.lowerExpr(v), HasExpr: true,
					})))
				}
			case semisSeen == 1 && !s.HasExpr:
				s.Expr = b.lowerExpr(v)
				s.HasExpr = true
			case semisSeen == 2 && v.Kind != syntax.NodeBlock && v.Kind != syntax.NodeIfStmt &&
				v.Kind != syntax.NodeWhileStmt && v.Kind != syntax.NodeForStmt && v.Kind != syntax.NodeExprStmt &&
				v.Kind != syntax.NodeReturnStmt && v.Kind != syntax.NodeLocalVarDecl:
				s.ForUpdate = append(s.ForUpdate, b.lowerExpr(v))
			default:
				bodyNode = v
			}
		}
	}
	if bodyNode != nil {
		s.Body = b.lowerStmt(bodyNode)
	}
	return StmtId(b.Stmts.Alloc(s))
}

func (b *Body) lowerReturn(n *syntax.Node) StmtId {
	s := Stmt{Kind: StmtReturn, Span: n.Span}
	for _, c := range n.Children {
		if node, ok := c.(*syntax.Node); ok && isExprNode(node.Kind) {
			s.Expr = b.lowerExpr(node)
			s.HasExpr = true
		}
	}
	return StmtId(b.Stmts.Alloc(s))
}

func (b *Body) lowerExprStmt(n *syntax.Node) StmtId {
	s := Stmt{Kind: StmtExpr, Span: n.Span}
	for _, c := range n.Children {
		if node, ok := c.(*syntax.Node); ok && isExprNode(node.Kind) {
			s.Expr = b.lowerExpr(node)
			s.HasExpr = true
		}
	}
	return StmtId(b.Stmts.Alloc(s))
}

func isExprNode(k syntax.NodeKind) bool {
	switch k {
	case syntax.NodeIdentifierExpr, syntax.NodeLiteralExpr, syntax.NodeBinaryExpr, syntax.NodeUnaryExpr,
		syntax.NodeCallExpr, syntax.NodeFieldAccessExpr, syntax.NodeAssignExpr, syntax.NodeNewExpr:
		return true
	}
	return false
}

func (b *Body) lowerExpr(n *syntax.Node) ExprId {
	switch n.Kind {
	case syntax.NodeIdentifierExpr:
		return ExprId(b.Exprs.Alloc(Expr{Kind: ExprName, Span: n.Span, Name: strings.TrimSpace(n.Text())}))
	case syntax.NodeLiteralExpr:
		return ExprId(b.Exprs.Alloc(Expr{Kind: ExprLiteral, Span: n.Span, Literal: n.Text()}))
	case syntax.NodeBinaryExpr:
		return b.lowerBinary(n)
	case syntax.NodeUnaryExpr:
		return b.lowerUnary(n)
	case syntax.NodeAssignExpr:
		return b.lowerAssign(n)
	case syntax.NodeCallExpr:
		return b.lowerCall(n)
	case syntax.NodeFieldAccessExpr:
		return b.lowerFieldOrArrayAccess(n)
	case syntax.NodeNewExpr:
		return b.lowerNew(n)
	default:
		e := Expr{Kind: ExprInvalid, Span: n.Span}
		for _, c := range n.Children {
			if node, ok := c.(*syntax.Node); ok {
				e.Children = append(e.Children, b.lowerExpr(node))
			}
		}
		return ExprId(b.Exprs.Alloc(e))
	}
}

func (b *Body) lowerBinary(n *syntax.Node) ExprId {
	var operands []*syntax.Node
	op := ""
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			operands = append(operands, v)
		case syntax.Token:
			if !v.Kind.IsTrivia() && op == "" {
				op = v.Text
			}
		}
	}
	e := Expr{Kind: ExprBinary, Span: n.Span, Op: op}
	if len(operands) > 0 {
		e.Lhs = b.lowerExpr(operands[0])
	}
	if len(operands) > 1 && operands[1].Kind == syntax.NodeTypeRef {
		// instanceof's right operand is a bare NodeTypeRef, not an
		// expression; capture its text so typeck can still read it.
		e.TypeText = strings.TrimSpace(operands[1].Text())
	} else if len(operands) > 1 {
		e.Rhs = b.lowerExpr(operands[1])
	}
	return ExprId(b.Exprs.Alloc(e))
}

func (b *Body) lowerUnary(n *syntax.Node) ExprId {
	var operandNode *syntax.Node
	var typeRef *syntax.Node
	op := ""
	// A prefix op ("-x", "!x", "++x") is written op-token(s) then operand;
	// a postfix op ("x++", "x--") is written operand then op-token. Casts
	// are "( TypeRef ) operand" and are detected separately via typeRef.
	firstSignificantIsOperand := false
	sawSignificant := false
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if v.Kind == syntax.NodeTypeRef {
				typeRef = v
				continue
			}
			if !sawSignificant {
				firstSignificantIsOperand = true
			}
			sawSignificant = true
			operandNode = v
		case syntax.Token:
			if v.Kind.IsTrivia() {
				continue
			}
			sawSignificant = true
			if op == "" {
				op = v.Text
			}
		}
	}
	if typeRef != nil { // cast
		e := Expr{Kind: ExprCast, Span: n.Span, TypeText: strings.TrimSpace(typeRef.Text())}
		if operandNode != nil {
			e.Operand = b.lowerExpr(operandNode)
		}
		return ExprId(b.Exprs.Alloc(e))
	}
	kind := ExprUnary
	if firstSignificantIsOperand {
		kind = ExprPostfix
	}
	e := Expr{Kind: kind, Span: n.Span, Op: op}
	if operandNode != nil {
		e.Operand = b.lowerExpr(operandNode)
	}
	return ExprId(b.Exprs.Alloc(e))
}

func (b *Body) lowerAssign(n *syntax.Node) ExprId {
	var operands []*syntax.Node
	op := ""
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			operands = append(operands, v)
		case syntax.Token:
			if !v.Kind.IsTrivia() && op == "" {
				op = v.Text
			}
		}
	}
	e := Expr{Kind: ExprAssign, Span: n.Span, Op: op}
	if len(operands) > 0 {
		e.Lhs = b.lowerExpr(operands[0])
	}
	if len(operands) > 1 {
		e.Rhs = b.lowerExpr(operands[1])
	}
	return ExprId(b.Exprs.Alloc(e))
}

func (b *Body) lowerCall(n *syntax.Node) ExprId {
	e := Expr{Kind: ExprCall, Span: n.Span}
	first := true
	for _, c := range n.Children {
		if node, ok := c.(*syntax.Node); ok {
			if first {
				e.Callee = b.lowerExpr(node)
				first = false
				continue
			}
			e.Args = append(e.Args, b.lowerExpr(node))
		}
	}
	return ExprId(b.Exprs.Alloc(e))
}

func (b *Body) lowerFieldOrArrayAccess(n *syntax.Node) ExprId {
	e := Expr{Kind: ExprFieldAccess, Span: n.Span}
	first := true
	hasBracket := false
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if first {
				e.Receiver = b.lowerExpr(v)
				first = false
				continue
			}
			if hasBracket {
				e.Index = b.lowerExpr(v)
				e.Kind = ExprArrayAccess
			}
		case syntax.Token:
			if v.Kind == syntax.KindLBracket {
				hasBracket = true
			}
			if v.Kind == syntax.KindIdentifier && e.Name == "" && !hasBracket {
				e.Name = v.Text
			}
		}
	}
	return ExprId(b.Exprs.Alloc(e))
}

func (b *Body) lowerNew(n *syntax.Node) ExprId {
	e := Expr{Kind: ExprNew, Span: n.Span}
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if v.Kind == syntax.NodeTypeRef && e.TypeText == "" {
				e.TypeText = strings.TrimSpace(v.Text())
				continue
			}
			if isExprNode(v.Kind) {
				e.Args = append(e.Args, b.lowerExpr(v))
			}
		}
	}
	return ExprId(b.Exprs.Alloc(e))
}
