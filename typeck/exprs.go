package typeck

import (
	"strings"

	"nova/diagnostic"
	"nova/hir"
	"nova/text"
	"nova/types"
)

func (x *checkCtx) checkStmt(id hir.StmtId) {
	s := x.body.Stmts.Get(uint32(id))
	switch s.Kind {
	case hir.StmtBlock:
		for _, c := range s.Statements {
			x.checkStmt(c)
		}
	case hir.StmtLocalVar:
		x.checkLocalVar(s)
	case hir.StmtExpr:
		if s.HasExpr {
			x.inferExpr(s.Expr)
		}
	case hir.StmtReturn:
		if s.HasExpr {
			x.inferExpr(s.Expr)
		}
	case hir.StmtIf:
		x.checkCondition(s)
		x.checkStmt(s.Then)
		if s.HasElse {
			x.checkStmt(s.Else)
		}
	case hir.StmtWhile:
		x.checkCondition(s)
		x.checkStmt(s.Body)
	case hir.StmtFor:
		for _, init := range s.ForInit {
			x.checkStmt(init)
		}
		if s.HasExpr {
			x.checkCondition(s)
		}
		for _, u := range s.ForUpdate {
			x.inferExpr(u)
		}
		x.checkStmt(s.Body)
	}
}

func (x *checkCtx) checkCondition(s hir.Stmt) {
	if !s.HasExpr {
		return
	}
	ty := x.inferExpr(s.Expr)
	if ty.Kind == types.KindUnknown || ty.Kind == types.KindError {
		return
	}
	if ty.Kind != types.KindPrimitive || ty.Primitive != types.Boolean {
		span := x.body.Exprs.Get(uint32(s.Expr)).Span
		x.report(CodeConditionNotBool, diagnostic.SeverityError,
			"condition must have type boolean, found "+types.FormatType(x.c.store, ty), span)
	}
}

func (x *checkCtx) checkLocalVar(s hir.Stmt) {
	local := x.body.Locals.Get(uint32(s.Local))
	declared, _ := x.c.resolveTypeText(x.env.scope, local.TypeText, local.Span)
	if !s.HasInitializer {
		x.env.locals[local.Name] = declared
		return
	}
	initTy := x.inferExpr(s.Initializer)
	finalTy := declared
	if declared.Kind == types.KindUnknown {
		finalTy = initTy // "var": the declared type is inferred from the initializer
	} else if compatible(initTy) && !types.IsAssignable(x.c.store, initTy, declared) {
		span := x.body.Exprs.Get(uint32(s.Initializer)).Span
		x.report(CodeTypeMismatch, diagnostic.SeverityError,
			"cannot assign "+types.FormatType(x.c.store, initTy)+" to "+types.FormatType(x.c.store, declared), span)
	}
	x.env.locals[local.Name] = finalTy
}

func compatible(ty types.Type) bool {
	return ty.Kind != types.KindUnknown && ty.Kind != types.KindError
}

// inferExpr evaluates id's static type, recording any type-mismatch/
// unresolved-*/ambiguous-call diagnostics encountered along the way. It
// never panics on a shape it doesn't recognize: an unhandled expr kind or
// an unresolved sub-expression simply yields Unknown, matching flow's and
// subtype.go's degrade-rather-than-halt failure model.
func (x *checkCtx) inferExpr(id hir.ExprId) types.Type {
	e := x.body.Exprs.Get(uint32(id))
	switch e.Kind {
	case hir.ExprLiteral:
		return literalType(x.c.store, e.Literal)
	case hir.ExprName:
		return x.inferName(e)
	case hir.ExprBinary:
		return x.inferBinary(e)
	case hir.ExprUnary, hir.ExprPostfix:
		return x.inferExpr(e.Operand)
	case hir.ExprAssign:
		return x.inferAssign(e)
	case hir.ExprCall:
		ty, _ := x.resolveCall(e, true)
		return ty
	case hir.ExprFieldAccess:
		return x.inferFieldAccess(e)
	case hir.ExprArrayAccess:
		recv := x.inferExpr(e.Receiver)
		x.inferExpr(e.Index)
		if recv.Kind == types.KindArray {
			return *recv.Elem
		}
		return types.Unknown()
	case hir.ExprNew:
		return x.inferNew(e)
	case hir.ExprCast:
		x.inferExpr(e.Operand)
		ty, _ := x.c.resolveTypeText(x.env.scope, e.TypeText, e.Span)
		return ty
	case hir.ExprInvalid:
		for _, c := range e.Children {
			x.inferExpr(c)
		}
		return types.Unknown()
	}
	return types.Unknown()
}

func literalType(store *types.Store, lit string) types.Type {
	switch {
	case strings.HasPrefix(lit, `"`):
		return types.ClassType(store.WellKnown().String)
	case strings.HasPrefix(lit, "'"):
		return types.PrimitiveType(types.Char)
	case lit == "true", lit == "false":
		return types.PrimitiveType(types.Boolean)
	case lit == "null":
		return types.NullType()
	}
	if lit == "" {
		return types.Unknown()
	}
	switch lit[len(lit)-1] {
	case 'l', 'L':
		return types.PrimitiveType(types.Long)
	case 'f', 'F':
		return types.PrimitiveType(types.Float)
	case 'd', 'D':
		return types.PrimitiveType(types.Double)
	}
	if strings.ContainsAny(lit, ".eE") {
		return types.PrimitiveType(types.Double)
	}
	return types.PrimitiveType(types.Int)
}

// inferName resolves a bare identifier: local/parameter, then this/super,
// then the enclosing class's own fields (walking its superclass chain),
// reporting unresolved-name if none of those apply. A type name used as a
// value (e.g. a static member-access qualifier peeled off by the parser
// elsewhere) is outside this module's simplified grammar and is not
// specially handled here.
func (x *checkCtx) inferName(e hir.Expr) types.Type {
	if ty, ok := x.env.locals[e.Name]; ok {
		return ty
	}
	if e.Name == "this" {
		return types.ClassType(x.env.ownerClass)
	}
	if e.Name == "super" {
		def, ok := x.c.store.Class(x.env.ownerClass)
		if ok && def.SuperClass != nil {
			return *def.SuperClass
		}
		return types.ClassType(x.c.store.WellKnown().Object)
	}
	if ty, ok := x.env.lookupField(e.Name); ok {
		return ty
	}
	x.report(CodeUnresolvedName, diagnostic.SeverityError, "cannot resolve symbol "+e.Name, e.Span)
	return types.Unknown()
}

func (x *checkCtx) inferBinary(e hir.Expr) types.Type {
	lhs := x.inferExpr(e.Lhs)
	if e.TypeText != "" {
		// instanceof: e.Rhs is unused (see hir.lowerBinary), its target type
		// lives in e.TypeText, and the result is always boolean.
		x.c.resolveTypeText(x.env.scope, e.TypeText, e.Span)
		return types.PrimitiveType(types.Boolean)
	}
	rhs := x.inferExpr(e.Rhs)

	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return types.PrimitiveType(types.Boolean)
	case "+":
		wk := x.c.store.WellKnown()
		if isStringLike(lhs, wk) || isStringLike(rhs, wk) {
			return types.ClassType(wk.String)
		}
		return numericResult(lhs, rhs)
	case "-", "*", "/", "%", "&", "|", "^", "<<", ">>", ">>>":
		return numericResult(lhs, rhs)
	}
	return types.Unknown()
}

func isStringLike(t types.Type, wk types.WellKnown) bool {
	return t.Kind == types.KindClass && t.Class == wk.String
}

// numericResult applies JLS §5.6's binary numeric promotion as widest-wins
// over double > float > long > int, with byte/short/char (and int) both
// promoting to int.
func numericResult(a, b types.Type) types.Type {
	if a.Kind != types.KindPrimitive || b.Kind != types.KindPrimitive {
		return types.Unknown()
	}
	rank := func(p types.PrimitiveKind) int {
		switch p {
		case types.Double:
			return 6
		case types.Float:
			return 5
		case types.Long:
			return 4
		default:
			return 3 // int and everything narrower promote to int
		}
	}
	ra, rb := rank(a.Primitive), rank(b.Primitive)
	if ra >= rb {
		if ra == 3 {
			return types.PrimitiveType(types.Int)
		}
		return a
	}
	if rb == 3 {
		return types.PrimitiveType(types.Int)
	}
	return b
}

func (x *checkCtx) inferAssign(e hir.Expr) types.Type {
	lhsTy := x.inferExpr(e.Lhs)
	rhsTy := x.inferExpr(e.Rhs)
	if e.Op == "=" && compatible(lhsTy) && compatible(rhsTy) && !types.IsAssignable(x.c.store, rhsTy, lhsTy) {
		span := x.body.Exprs.Get(uint32(e.Rhs)).Span
		x.report(CodeTypeMismatch, diagnostic.SeverityError,
			"cannot assign "+types.FormatType(x.c.store, rhsTy)+" to "+types.FormatType(x.c.store, lhsTy), span)
	}
	return lhsTy
}

func (x *checkCtx) inferFieldAccess(e hir.Expr) types.Type {
	recv := x.inferExpr(e.Receiver)
	if !compatible(recv) || recv.Kind != types.KindClass {
		return types.Unknown()
	}
	for id, has := recv.Class, true; has; {
		d, found := x.c.store.Class(id)
		if !found {
			break
		}
		for _, f := range d.Fields {
			if f.Name == e.Name {
				return f.Type
			}
		}
		if d.SuperClass != nil && d.SuperClass.Kind == types.KindClass {
			id, has = d.SuperClass.Class, true
		} else {
			has = false
		}
	}
	x.report(CodeUnresolvedField, diagnostic.SeverityError, "cannot resolve field '"+e.Name+"'", e.Span)
	return types.Unknown()
}

func (x *checkCtx) inferNew(e hir.Expr) types.Type {
	ty, _ := x.c.resolveTypeText(x.env.scope, e.TypeText, e.Span)
	for _, a := range e.Args {
		x.inferExpr(a)
	}
	return ty
}

// resolveCall type-checks a call expression's callee and arguments and
// resolves the target method overload. report controls whether unresolved-
// method/ambiguous-call diagnostics are recorded — ResolveMethodCall (the
// goto helper) passes false, since it only wants the answer, not a full
// checker pass.
func (x *checkCtx) resolveCall(e hir.Expr, report bool) (types.Type, *types.ResolvedMethod) {
	callee := x.body.Exprs.Get(uint32(e.Callee))
	args := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = x.inferExpr(a)
	}

	switch callee.Kind {
	case hir.ExprName:
		return x.resolveUnqualifiedCall(callee, args, report)
	case hir.ExprFieldAccess:
		recv := x.inferExpr(callee.Receiver)
		return x.resolveQualifiedCall(recv, callee.Name, args, callee.Span, report)
	default:
		x.inferExpr(e.Callee)
		return types.Unknown(), nil
	}
}

func (x *checkCtx) resolveUnqualifiedCall(callee hir.Expr, args []types.Type, report bool) (types.Type, *types.ResolvedMethod) {
	owner, candidates := x.env.lookupMethods(callee.Name)
	if len(candidates) == 0 {
		if report {
			x.report(CodeUnresolvedMethod, diagnostic.SeverityError,
				"cannot resolve method '"+callee.Name+"'", callee.Span)
		}
		return types.Unknown(), nil
	}
	if x.env.isStatic {
		allInstance := true
		for _, m := range candidates {
			if m.IsStatic {
				allInstance = false
			}
		}
		if allInstance {
			if report {
				x.report(CodeUnresolvedMethod, diagnostic.SeverityError,
					"cannot resolve method '"+callee.Name+"' in a static context", callee.Span)
			}
			return types.Unknown(), nil
		}
	}
	return x.finishOverload(owner, callee.Name, candidates, args, callee.Span, report)
}

func (x *checkCtx) resolveQualifiedCall(recv types.Type, name string, args []types.Type, span text.Range, report bool) (types.Type, *types.ResolvedMethod) {
	if !compatible(recv) || recv.Kind != types.KindClass {
		return types.Unknown(), nil
	}
	for id, has := recv.Class, true; has; {
		def, found := x.c.store.Class(id)
		if !found {
			break
		}
		var candidates []types.MethodDef
		for _, m := range def.Methods {
			if m.Name == name {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) > 0 {
			return x.finishOverload(id, name, candidates, args, span, report)
		}
		if def.SuperClass != nil && def.SuperClass.Kind == types.KindClass {
			id, has = def.SuperClass.Class, true
		} else {
			has = false
		}
	}
	if report {
		x.report(CodeUnresolvedMethod, diagnostic.SeverityError, "cannot resolve method '"+name+"'", span)
	}
	return types.Unknown(), nil
}

func (x *checkCtx) finishOverload(owner types.ClassId, name string, candidates []types.MethodDef, args []types.Type, span text.Range, report bool) (types.Type, *types.ResolvedMethod) {
	resolved, ok, ambiguous := types.ResolveOverload(x.c.store, owner, candidates, args)
	if !ok {
		if report && ambiguous {
			x.report(CodeAmbiguousCall, diagnostic.SeverityError, "ambiguous call to '"+name+"'", span)
		} else if report {
			x.report(CodeUnresolvedMethod, diagnostic.SeverityError, "cannot resolve method '"+name+"'", span)
		}
		return types.Unknown(), nil
	}
	return resolved.ReturnType, &resolved
}
