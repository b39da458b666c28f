package syntax

import (
	"fmt"

	"nova/diagnostic"
	"nova/internal/logging"
	"nova/text"
)

// Parser is a hand-rolled recursive-descent parser over a token stream,
// producing a lossless CST. It never aborts on malformed input: a
// production that fails to match records a diagnostic, emits a
// NodeErrorNode spanning the unconsumed tokens up to the next statement/
// member synchronization point, and parsing continues (spec §4.5's
// error-recovery requirement).
type Parser struct {
	toks        []Token
	significant []int // indices into toks of non-trivia tokens
	pos         int    // index into significant
	diags       []diagnostic.Diagnostic
	log         *logging.Logger
}

// ParseResult bundles the parsed tree with any diagnostics raised while
// parsing.
type ParseResult struct {
	Root        *Node
	Diagnostics []diagnostic.Diagnostic
}

// Parse lexes and parses a full compilation unit from src.
func Parse(src []byte) ParseResult {
	toks := Tokenize(src)
	p := &Parser{toks: toks, log: logging.Get(logging.CategorySyntax)}
	for i, t := range toks {
		if !t.Kind.IsTrivia() {
			p.significant = append(p.significant, i)
		}
	}
	root := p.parseCompilationUnit()
	return ParseResult{Root: root, Diagnostics: p.diags}
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.significant) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.significant[p.pos]]
}

func (p *Parser) curKind() Kind { return p.cur().Kind }

func (p *Parser) at(k Kind) bool { return p.curKind() == k }

func (p *Parser) atEOF() bool { return p.curKind() == KindEOF }

// advance consumes the current significant token plus any leading trivia
// that preceded it, returning all of it (trivia included) so the caller can
// attach it to the tree losslessly.
func (p *Parser) advance() []interface{} {
	var startTokIdx int
	if p.pos == 0 {
		startTokIdx = 0
	} else {
		startTokIdx = p.significant[p.pos-1] + 1
	}
	endTokIdx := len(p.toks) - 1
	if p.pos < len(p.significant) {
		endTokIdx = p.significant[p.pos]
	}
	var out []interface{}
	for i := startTokIdx; i <= endTokIdx && i < len(p.toks); i++ {
		out = append(out, p.toks[i])
	}
	p.pos++
	return out
}

func (p *Parser) expect(k Kind) []interface{} {
	if p.at(k) {
		return p.advance()
	}
	p.errorf("expected token kind %d, found %q", k, p.cur().Text)
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, diagnostic.Diagnostic{
		Code:     "syntax-error",
		Severity: diagnostic.SeverityError,
		Message:  msg,
		Span:     p.cur().Span,
	})
	p.log.Debug("syntax error at %d: %s", p.cur().Span.Start, msg)
}

// recoverTo consumes tokens until one of the given kinds (or EOF) is next,
// wrapping whatever was skipped in a NodeErrorNode so the skipped bytes are
// still accounted for in the lossless tree.
func (p *Parser) recoverTo(kinds ...Kind) *Node {
	start := p.cur().Span.Start
	var children []interface{}
	for !p.atEOF() {
		for _, k := range kinds {
			if p.at(k) {
				return &Node{Kind: NodeErrorNode, Span: text.Range{Start: start, End: p.cur().Span.Start}, Children: children}
			}
		}
		children = append(children, p.advance()...)
	}
	return &Node{Kind: NodeErrorNode, Span: text.Range{Start: start, End: p.cur().Span.End}, Children: children}
}

func (p *Parser) node(kind NodeKind, start text.Offset, children []interface{}) *Node {
	end := start
	if len(children) > 0 {
		end = lastEnd(children)
	}
	return &Node{Kind: kind, Span: text.Range{Start: start, End: end}, Children: children}
}

func lastEnd(children []interface{}) text.Offset {
	last := children[len(children)-1]
	switch v := last.(type) {
	case Token:
		return v.Span.End
	case *Node:
		return v.Span.End
	}
	return 0
}

// --- grammar ---

func (p *Parser) parseCompilationUnit() *Node {
	start := text.Offset(0)
	var children []interface{}

	if p.at(KindAt) || p.at(KindKeywordPackage) {
		children = append(children, p.parsePackageDecl())
	}
	for p.at(KindKeywordImport) {
		children = append(children, p.parseImportDecl())
	}
	for !p.atEOF() {
		children = append(children, p.parseTypeDecl())
	}
	// Take the trailing trivia and the EOF token so the tree stays lossless.
	children = append(children, p.advance()...)
	return p.node(NodeCompilationUnit, start, children)
}

func (p *Parser) parsePackageDecl() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	for p.at(KindAt) {
		children = append(children, p.parseAnnotation())
	}
	children = append(children, p.expect(KindKeywordPackage)...)
	children = append(children, p.parseQualifiedName()...)
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodePackageDecl, start, children)
}

func (p *Parser) parseAnnotation() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	children = append(children, p.expect(KindAt)...)
	children = append(children, p.parseQualifiedName()...)
	if p.at(KindLParen) {
		children = append(children, p.recoverTo(KindRParen).Children...)
		children = append(children, p.expect(KindRParen)...)
	}
	return p.node(NodeModifierList, start, children)
}

func (p *Parser) parseImportDecl() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	children = append(children, p.expect(KindKeywordImport)...)
	if p.at(KindKeywordStatic) {
		children = append(children, p.advance()...)
	}
	children = append(children, p.parseQualifiedName()...)
	if p.at(KindDot) {
		children = append(children, p.advance()...)
		children = append(children, p.expect(KindStar)...)
	}
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodeImportDecl, start, children)
}

func (p *Parser) parseQualifiedName() []interface{} {
	var out []interface{}
	out = append(out, p.expect(KindIdentifier)...)
	for p.at(KindDot) && p.peekSignificant(1).Kind == KindIdentifier {
		out = append(out, p.advance()...)
		out = append(out, p.expect(KindIdentifier)...)
	}
	return out
}

func (p *Parser) peekSignificant(ahead int) Token {
	idx := p.pos + ahead
	if idx >= len(p.significant) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.significant[idx]]
}

func (p *Parser) parseModifiers() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	for {
		switch p.curKind() {
		case KindKeywordPublic, KindKeywordPrivate, KindKeywordProtected, KindKeywordStatic,
			KindKeywordFinal, KindKeywordAbstract, KindKeywordSynchronized, KindKeywordNative,
			KindKeywordTransient, KindKeywordVolatile, KindKeywordStrictfp, KindKeywordDefault:
			children = append(children, p.advance()...)
		case KindAt:
			children = append(children, p.parseAnnotation())
		default:
			return p.node(NodeModifierList, start, children)
		}
	}
}

func (p *Parser) parseTypeDecl() *Node {
	mods := p.parseModifiers()
	switch p.curKind() {
	case KindKeywordClass:
		return p.parseClassOrInterface(mods, NodeClassDecl, KindKeywordClass)
	case KindKeywordInterface:
		return p.parseClassOrInterface(mods, NodeInterfaceDecl, KindKeywordInterface)
	case KindKeywordEnum:
		return p.parseClassOrInterface(mods, NodeEnumDecl, KindKeywordEnum)
	case KindIdentifier:
		if p.cur().Text == "record" {
			return p.parseClassOrInterface(mods, NodeRecordDecl, KindIdentifier)
		}
	}
	p.errorf("expected a type declaration, found %q", p.cur().Text)
	start := mods.Span.Start
	children := append([]interface{}{mods}, p.recoverTo(KindKeywordClass, KindKeywordInterface, KindKeywordEnum, KindEOF))
	return p.node(NodeErrorNode, start, children)
}

func (p *Parser) parseClassOrInterface(mods *Node, kind NodeKind, introKind Kind) *Node {
	start := mods.Span.Start
	children := []interface{}{mods}
	children = append(children, p.advance()...) // class/interface/enum/record keyword
	children = append(children, p.expect(KindIdentifier)...)

	if p.at(KindLt) {
		children = append(children, p.parseTypeParamList())
	}
	if p.at(KindLParen) { // record header
		children = append(children, p.recoverTo(KindRParen).Children...)
		children = append(children, p.expect(KindRParen)...)
	}
	if p.at(KindKeywordExtends) {
		children = append(children, p.advance()...)
		children = append(children, p.parseTypeRef())
	}
	if p.at(KindKeywordImplements) {
		children = append(children, p.advance()...)
		children = append(children, p.parseTypeRef())
		for p.at(KindComma) {
			children = append(children, p.advance()...)
			children = append(children, p.parseTypeRef())
		}
	}

	children = append(children, p.expect(KindLBrace)...)
	for !p.at(KindRBrace) && !p.atEOF() {
		children = append(children, p.parseMember())
	}
	children = append(children, p.expect(KindRBrace)...)
	return p.node(kind, start, children)
}

// parseTypeParamList parses "<T, U extends Bound>" as found after a class/
// interface/method name. Bounds are kept as plain TypeRef children rather
// than structured separately; resolve only needs the parameter names.
func (p *Parser) parseTypeParamList() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindLt)
	for !p.at(KindGt) && !p.atEOF() {
		children = append(children, p.expect(KindIdentifier)...)
		if p.at(KindKeywordExtends) {
			children = append(children, p.advance()...)
			children = append(children, p.parseTypeRef())
			for p.at(KindAmp) {
				children = append(children, p.advance()...)
				children = append(children, p.parseTypeRef())
			}
		}
		if p.at(KindComma) {
			children = append(children, p.advance()...)
		}
	}
	children = append(children, p.expect(KindGt)...)
	return p.node(NodeTypeParamList, start, children)
}

func (p *Parser) parseTypeRef() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	if isPrimitiveTypeKind(p.curKind()) {
		children = append(children, p.advance()...)
		for p.at(KindLBracket) {
			children = append(children, p.advance()...)
			children = append(children, p.expect(KindRBracket)...)
		}
		return p.node(NodeTypeRef, start, children)
	}
	children = append(children, p.parseQualifiedName()...)
	if p.at(KindLt) {
		children = append(children, p.advance()...)
		for !p.at(KindGt) && !p.atEOF() {
			children = append(children, p.parseTypeRef())
			if p.at(KindComma) {
				children = append(children, p.advance()...)
			}
		}
		children = append(children, p.expect(KindGt)...)
	}
	for p.at(KindLBracket) {
		children = append(children, p.advance()...)
		children = append(children, p.expect(KindRBracket)...)
	}
	return p.node(NodeTypeRef, start, children)
}

func (p *Parser) parseMember() *Node {
	if p.at(KindSemi) {
		start := p.cur().Span.Start
		children := p.advance()
		return p.node(NodeErrorNode, start, children) // stray semicolon, harmless
	}
	mods := p.parseModifiers()
	if p.curKind() == KindKeywordClass || p.curKind() == KindKeywordInterface || p.curKind() == KindKeywordEnum {
		return p.reparseNestedType(mods)
	}

	var typeParams *Node
	if p.at(KindLt) {
		typeParams = p.parseTypeParamList()
	}
	typeRef := p.parseTypeRef()
	if p.at(KindLParen) {
		// No separate name token followed the type: what we parsed as a
		// type was actually a constructor name (Java constructors have no
		// return type). Flatten it back into bare tokens rather than
		// nesting it under NodeTypeRef, so hir's methodName lookup (which
		// scans top-level Identifier tokens) finds it uniformly.
		return p.parseMethodRest(mods, typeParams, nil, flattenTokens(typeRef))
	}
	if !p.at(KindIdentifier) {
		p.errorf("expected member name, found %q", p.cur().Text)
		start := mods.Span.Start
		children := []interface{}{mods, typeRef, p.recoverTo(KindSemi, KindRBrace)}
		return p.node(NodeErrorNode, start, children)
	}
	nameTok := p.advance()

	if p.at(KindLParen) {
		return p.parseMethodRest(mods, typeParams, typeRef, nameTok)
	}
	return p.parseFieldRest(mods, typeRef, nameTok)
}

func flattenTokens(n *Node) []interface{} {
	toks := n.Tokens()
	out := make([]interface{}, len(toks))
	for i, t := range toks {
		out[i] = t
	}
	return out
}

func (p *Parser) reparseNestedType(mods *Node) *Node {
	switch p.curKind() {
	case KindKeywordClass:
		return p.parseClassOrInterface(mods, NodeClassDecl, KindKeywordClass)
	case KindKeywordInterface:
		return p.parseClassOrInterface(mods, NodeInterfaceDecl, KindKeywordInterface)
	default:
		return p.parseClassOrInterface(mods, NodeEnumDecl, KindKeywordEnum)
	}
}

func (p *Parser) parseMethodRest(mods, typeParams, typeRef *Node, nameTok []interface{}) *Node {
	start := mods.Span.Start
	children := []interface{}{mods}
	if typeParams != nil {
		children = append(children, typeParams)
	}
	if typeRef != nil {
		children = append(children, typeRef)
	}
	children = append(children, nameTok...)
	children = append(children, p.expect(KindLParen)...)
	for !p.at(KindRParen) && !p.atEOF() {
		children = append(children, p.parseParam())
		if p.at(KindComma) {
			children = append(children, p.advance()...)
		}
	}
	children = append(children, p.expect(KindRParen)...)
	if p.at(KindKeywordThrows) {
		children = append(children, p.advance()...)
		children = append(children, p.parseTypeRef())
		for p.at(KindComma) {
			children = append(children, p.advance()...)
			children = append(children, p.parseTypeRef())
		}
	}
	if p.at(KindLBrace) {
		children = append(children, p.parseBlock())
	} else {
		children = append(children, p.expect(KindSemi)...)
	}
	return p.node(NodeMethodDecl, start, children)
}

func (p *Parser) parseParam() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	for p.curKind() == KindKeywordFinal || p.curKind() == KindAt {
		children = append(children, p.advance()...)
	}
	children = append(children, p.parseTypeRef())
	if p.at(KindEllipsis) {
		children = append(children, p.advance()...)
	}
	children = append(children, p.expect(KindIdentifier)...)
	return p.node(NodeParam, start, children)
}

func (p *Parser) parseFieldRest(mods, typeRef *Node, nameTok []interface{}) *Node {
	start := mods.Span.Start
	children := []interface{}{mods, typeRef}
	children = append(children, nameTok...)
	if p.at(KindEq) {
		children = append(children, p.advance()...)
		children = append(children, p.parseExpr())
	}
	for p.at(KindComma) {
		children = append(children, p.advance()...)
		children = append(children, p.expect(KindIdentifier)...)
		if p.at(KindEq) {
			children = append(children, p.advance()...)
			children = append(children, p.parseExpr())
		}
	}
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodeFieldDecl, start, children)
}

func (p *Parser) parseBlock() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindLBrace)
	for !p.at(KindRBrace) && !p.atEOF() {
		children = append(children, p.parseStmt())
	}
	children = append(children, p.expect(KindRBrace)...)
	return p.node(NodeBlock, start, children)
}

func (p *Parser) parseStmt() *Node {
	switch p.curKind() {
	case KindLBrace:
		return p.parseBlock()
	case KindKeywordIf:
		return p.parseIfStmt()
	case KindKeywordWhile:
		return p.parseWhileStmt()
	case KindKeywordFor:
		return p.parseForStmt()
	case KindKeywordReturn:
		return p.parseReturnStmt()
	case KindSemi:
		start := p.cur().Span.Start
		return p.node(NodeExprStmt, start, p.advance())
	default:
		if p.looksLikeLocalVarDecl() {
			return p.parseLocalVarDecl()
		}
		return p.parseExprStmt()
	}
}

func (p *Parser) looksLikeLocalVarDecl() bool {
	if p.curKind() == KindKeywordFinal {
		return true
	}
	if p.curKind() != KindIdentifier && !isPrimitiveTypeKind(p.curKind()) {
		return false
	}
	// identifier identifier -> declaration ("Foo x"); identifier '(' or '.'
	// or operator -> expression statement.
	return p.peekSignificant(1).Kind == KindIdentifier
}

func isPrimitiveTypeKind(k Kind) bool {
	switch k {
	case KindKeywordInt, KindKeywordLong, KindKeywordShort, KindKeywordByte,
		KindKeywordChar, KindKeywordBoolean, KindKeywordFloat, KindKeywordDouble, KindKeywordVoid:
		return true
	}
	return false
}

func (p *Parser) parseLocalVarDecl() *Node {
	start := p.cur().Span.Start
	var children []interface{}
	if p.at(KindKeywordFinal) {
		children = append(children, p.advance()...)
	}
	children = append(children, p.parseTypeRef())
	children = append(children, p.expect(KindIdentifier)...)
	if p.at(KindEq) {
		children = append(children, p.advance()...)
		children = append(children, p.parseExpr())
	}
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodeLocalVarDecl, start, children)
}

func (p *Parser) parseIfStmt() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindKeywordIf)
	children = append(children, p.expect(KindLParen)...)
	children = append(children, p.parseExpr())
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.parseStmt())
	if p.at(KindKeywordElse) {
		children = append(children, p.advance()...)
		children = append(children, p.parseStmt())
	}
	return p.node(NodeIfStmt, start, children)
}

func (p *Parser) parseWhileStmt() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindKeywordWhile)
	children = append(children, p.expect(KindLParen)...)
	children = append(children, p.parseExpr())
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.parseStmt())
	return p.node(NodeWhileStmt, start, children)
}

func (p *Parser) parseForStmt() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindKeywordFor)
	children = append(children, p.expect(KindLParen)...)
	for !p.at(KindSemi) && !p.atEOF() {
		if p.looksLikeLocalVarDecl() {
			children = append(children, p.parseTypeRef())
			children = append(children, p.expect(KindIdentifier)...)
			if p.at(KindEq) {
				children = append(children, p.advance()...)
				children = append(children, p.parseExpr())
			}
		} else {
			children = append(children, p.parseExpr())
		}
		if p.at(KindComma) {
			children = append(children, p.advance()...)
		}
	}
	children = append(children, p.expect(KindSemi)...)
	if !p.at(KindSemi) {
		children = append(children, p.parseExpr())
	}
	children = append(children, p.expect(KindSemi)...)
	for !p.at(KindRParen) && !p.atEOF() {
		children = append(children, p.parseExpr())
		if p.at(KindComma) {
			children = append(children, p.advance()...)
		}
	}
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.parseStmt())
	return p.node(NodeForStmt, start, children)
}

func (p *Parser) parseReturnStmt() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindKeywordReturn)
	if !p.at(KindSemi) {
		children = append(children, p.parseExpr())
	}
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodeReturnStmt, start, children)
}

func (p *Parser) parseExprStmt() *Node {
	start := p.cur().Span.Start
	expr := p.parseExpr()
	children := []interface{}{expr}
	children = append(children, p.expect(KindSemi)...)
	return p.node(NodeExprStmt, start, children)
}

// --- expressions (precedence climbing) ---

var binaryPrecedence = map[Kind]int{
	KindPipePipe: 1,
	KindAmpAmp:   2,
	KindPipe:     3,
	KindCaret:    4,
	KindAmp:      5,
	KindEqEq:     6, KindNotEq: 6,
	KindLt: 7, KindGt: 7, KindLtEq: 7, KindGtEq: 7, KindKeywordInstanceof: 7,
	KindLShift: 8, KindRShift: 8, KindURShift: 8,
	KindPlus: 9, KindMinus: 9,
	KindStar: 10, KindSlash: 10, KindPercent: 10,
}

var assignOps = map[Kind]bool{
	KindEq: true, KindPlusEq: true, KindMinusEq: true, KindStarEq: true, KindSlashEq: true,
	KindAmpEq: true, KindPipeEq: true, KindCaretEq: true, KindPercentEq: true,
	KindLShiftEq: true, KindRShiftEq: true, KindURShiftEq: true,
}

func (p *Parser) parseExpr() *Node {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() *Node {
	start := p.cur().Span.Start
	lhs := p.parseBinary(0)
	if assignOps[p.curKind()] {
		children := []interface{}{lhs}
		children = append(children, p.advance()...)
		children = append(children, p.parseAssignment())
		return p.node(NodeAssignExpr, start, children)
	}
	return lhs
}

func (p *Parser) parseBinary(minPrec int) *Node {
	start := p.cur().Span.Start
	lhs := p.parseUnary()
	for {
		prec, ok := binaryPrecedence[p.curKind()]
		if !ok || prec < minPrec {
			return lhs
		}
		opKind := p.curKind()
		op := p.advance()
		var rhs *Node
		if opKind == KindKeywordInstanceof {
			// instanceof's right operand is a type, not an expression.
			rhs = p.parseTypeRef()
		} else {
			rhs = p.parseBinary(prec + 1)
		}
		children := []interface{}{lhs}
		children = append(children, op...)
		children = append(children, rhs)
		lhs = p.node(NodeBinaryExpr, start, children)
	}
}

func (p *Parser) parseUnary() *Node {
	switch p.curKind() {
	case KindPlus, KindMinus, KindBang, KindTilde, KindPlusPlus, KindMinusMinus:
		start := p.cur().Span.Start
		children := p.advance()
		children = append(children, p.parseUnary())
		return p.node(NodeUnaryExpr, start, children)
	case KindLParen:
		// Could be a parenthesized expression or a cast; try cast first by
		// lookahead, fall back to parenthesized expression.
		if p.looksLikeCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

func (p *Parser) looksLikeCast() bool {
	// "(" TypeName ")" followed by something that can only start a new
	// expression, never continue the one we're already in. Primitive types
	// are unambiguous (int/void/... can never head a parenthesized
	// expression); reference type names are only treated as a cast when
	// followed by a token that couldn't be a binary/postfix continuation,
	// since "(a)" alone is ambiguous with a plain parenthesized identifier.
	primitive := isPrimitiveTypeKind(p.peekSignificant(1).Kind)
	if !primitive && p.peekSignificant(1).Kind != KindIdentifier {
		return false
	}
	ahead := 2
	for p.peekSignificant(ahead).Kind == KindDot {
		ahead += 2
	}
	if p.peekSignificant(ahead).Kind != KindRParen {
		return false
	}
	if primitive {
		return true
	}
	switch p.peekSignificant(ahead + 1).Kind {
	case KindIdentifier, KindLParen, KindKeywordNew, KindKeywordThis, KindKeywordSuper,
		KindIntLiteral, KindLongLiteral, KindFloatLiteral, KindDoubleLiteral,
		KindCharLiteral, KindStringLiteral, KindTextBlock, KindBoolLiteral, KindNullLiteral,
		KindBang, KindTilde:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCast() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindLParen)
	children = append(children, p.parseTypeRef())
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.parseUnary())
	return p.node(NodeUnaryExpr, start, children)
}

func (p *Parser) parsePostfix() *Node {
	start := p.cur().Span.Start
	e := p.parsePrimary()
	for {
		switch p.curKind() {
		case KindDot:
			children := []interface{}{e}
			children = append(children, p.advance()...)
			children = append(children, p.expect(KindIdentifier)...)
			if p.at(KindLParen) {
				e = p.parseCallArgs(p.node(NodeFieldAccessExpr, start, children))
			} else {
				e = p.node(NodeFieldAccessExpr, start, children)
			}
		case KindLBracket:
			children := []interface{}{e}
			children = append(children, p.advance()...)
			children = append(children, p.parseExpr())
			children = append(children, p.expect(KindRBracket)...)
			e = p.node(NodeFieldAccessExpr, start, children)
		case KindPlusPlus, KindMinusMinus:
			children := []interface{}{e}
			children = append(children, p.advance()...)
			e = p.node(NodeUnaryExpr, start, children)
		case KindLParen:
			e = p.parseCallArgs(e)
		default:
			return e
		}
	}
}

func (p *Parser) parseCallArgs(callee *Node) *Node {
	start := callee.Span.Start
	children := []interface{}{callee}
	children = append(children, p.expect(KindLParen)...)
	for !p.at(KindRParen) && !p.atEOF() {
		children = append(children, p.parseExpr())
		if p.at(KindComma) {
			children = append(children, p.advance()...)
		}
	}
	children = append(children, p.expect(KindRParen)...)
	return p.node(NodeCallExpr, start, children)
}

func (p *Parser) parsePrimary() *Node {
	start := p.cur().Span.Start
	switch p.curKind() {
	case KindIntLiteral, KindLongLiteral, KindFloatLiteral, KindDoubleLiteral,
		KindCharLiteral, KindStringLiteral, KindTextBlock, KindBoolLiteral, KindNullLiteral:
		return p.node(NodeLiteralExpr, start, p.advance())
	case KindIdentifier:
		return p.node(NodeIdentifierExpr, start, p.advance())
	case KindKeywordThis, KindKeywordSuper:
		return p.node(NodeIdentifierExpr, start, p.advance())
	case KindLParen:
		children := p.expect(KindLParen)
		children = append(children, p.parseExpr())
		children = append(children, p.expect(KindRParen)...)
		return p.node(NodeIdentifierExpr, start, children)
	case KindKeywordNew:
		return p.parseNew()
	default:
		p.errorf("expected an expression, found %q", p.cur().Text)
		return p.recoverTo(KindSemi, KindRParen, KindRBrace, KindComma, KindEOF)
	}
}

func (p *Parser) parseNew() *Node {
	start := p.cur().Span.Start
	children := p.expect(KindKeywordNew)
	children = append(children, p.parseTypeRef())
	if p.at(KindLParen) {
		children = append(children, p.expect(KindLParen)...)
		for !p.at(KindRParen) && !p.atEOF() {
			children = append(children, p.parseExpr())
			if p.at(KindComma) {
				children = append(children, p.advance()...)
			}
		}
		children = append(children, p.expect(KindRParen)...)
		if p.at(KindLBrace) {
			children = append(children, p.parseBlock()) // anonymous class body
		}
	} else if p.at(KindLBracket) {
		for p.at(KindLBracket) {
			children = append(children, p.advance()...)
			if !p.at(KindRBracket) {
				children = append(children, p.parseExpr())
			}
			children = append(children, p.expect(KindRBracket)...)
		}
	}
	return p.node(NodeNewExpr, start, children)
}
