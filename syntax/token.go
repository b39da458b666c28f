// Package syntax implements Nova's lexer and recursive-descent parser (spec
// §4.4, §4.5), producing a lossless, error-recovering concrete syntax tree:
// every byte of the source file is accounted for by some token or trivia
// node, so the CST can be printed back to the exact original bytes.
//
// The parser is hand-rolled rather than built on a grammar library, per
// design note §9 and grounded on the teacher's own willingness to hand-parse
// with go/parser/go/ast rather than reach for a third-party grammar in
// internal/world/scope.go; this is also why google/mangle's transitive
// antlr4-go/antlr dependency is never imported directly here.
package syntax

// Kind identifies a lexical token kind.
type Kind int

const (
	KindEOF Kind = iota
	KindError

	// Trivia
	KindWhitespace
	KindLineComment
	KindBlockComment

	// Literals
	KindIntLiteral
	KindLongLiteral
	KindFloatLiteral
	KindDoubleLiteral
	KindCharLiteral
	KindStringLiteral
	KindTextBlock
	KindBoolLiteral
	KindNullLiteral
	KindIdentifier

	// Keywords
	KindKeywordAbstract
	KindKeywordAssert
	KindKeywordBoolean
	KindKeywordBreak
	KindKeywordByte
	KindKeywordCase
	KindKeywordCatch
	KindKeywordChar
	KindKeywordClass
	KindKeywordConst
	KindKeywordContinue
	KindKeywordDefault
	KindKeywordDo
	KindKeywordDouble
	KindKeywordElse
	KindKeywordEnum
	KindKeywordExtends
	KindKeywordFinal
	KindKeywordFinally
	KindKeywordFloat
	KindKeywordFor
	KindKeywordGoto
	KindKeywordIf
	KindKeywordImplements
	KindKeywordImport
	KindKeywordInstanceof
	KindKeywordInt
	KindKeywordInterface
	KindKeywordLong
	KindKeywordNative
	KindKeywordNew
	KindKeywordPackage
	KindKeywordPrivate
	KindKeywordProtected
	KindKeywordPublic
	KindKeywordRecord
	KindKeywordReturn
	KindKeywordShort
	KindKeywordStatic
	KindKeywordStrictfp
	KindKeywordSuper
	KindKeywordSwitch
	KindKeywordSynchronized
	KindKeywordThis
	KindKeywordThrow
	KindKeywordThrows
	KindKeywordTransient
	KindKeywordTry
	KindKeywordVoid
	KindKeywordVolatile
	KindKeywordWhile
	KindKeywordVar
	KindKeywordYield
	KindKeywordSealed
	KindKeywordPermits
	KindKeywordNonSealed

	// Punctuation and operators
	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindSemi
	KindComma
	KindDot
	KindEllipsis
	KindAt
	KindColonColon
	KindColon
	KindQuestion
	KindArrow

	KindEq
	KindGt
	KindLt
	KindBang
	KindTilde
	KindPlusPlus
	KindMinusMinus
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindAmp
	KindPipe
	KindCaret
	KindPercent
	KindLShift
	KindRShift
	KindURShift

	KindEqEq
	KindNotEq
	KindLtEq
	KindGtEq
	KindAmpAmp
	KindPipePipe

	KindPlusEq
	KindMinusEq
	KindStarEq
	KindSlashEq
	KindAmpEq
	KindPipeEq
	KindCaretEq
	KindPercentEq
	KindLShiftEq
	KindRShiftEq
	KindURShiftEq
)

var keywords = map[string]Kind{
	"abstract":     KindKeywordAbstract,
	"assert":       KindKeywordAssert,
	"boolean":      KindKeywordBoolean,
	"break":        KindKeywordBreak,
	"byte":         KindKeywordByte,
	"case":         KindKeywordCase,
	"catch":        KindKeywordCatch,
	"char":         KindKeywordChar,
	"class":        KindKeywordClass,
	"const":        KindKeywordConst,
	"continue":     KindKeywordContinue,
	"default":      KindKeywordDefault,
	"do":           KindKeywordDo,
	"double":       KindKeywordDouble,
	"else":         KindKeywordElse,
	"enum":         KindKeywordEnum,
	"extends":      KindKeywordExtends,
	"final":        KindKeywordFinal,
	"finally":      KindKeywordFinally,
	"float":        KindKeywordFloat,
	"for":          KindKeywordFor,
	"goto":         KindKeywordGoto,
	"if":           KindKeywordIf,
	"implements":   KindKeywordImplements,
	"import":       KindKeywordImport,
	"instanceof":   KindKeywordInstanceof,
	"int":          KindKeywordInt,
	"interface":    KindKeywordInterface,
	"long":         KindKeywordLong,
	"native":       KindKeywordNative,
	"new":          KindKeywordNew,
	"package":      KindKeywordPackage,
	"private":      KindKeywordPrivate,
	"protected":    KindKeywordProtected,
	"public":       KindKeywordPublic,
	"return":       KindKeywordReturn,
	"short":        KindKeywordShort,
	"static":       KindKeywordStatic,
	"strictfp":     KindKeywordStrictfp,
	"super":        KindKeywordSuper,
	"switch":       KindKeywordSwitch,
	"synchronized": KindKeywordSynchronized,
	"this":         KindKeywordThis,
	"throw":        KindKeywordThrow,
	"throws":       KindKeywordThrows,
	"transient":    KindKeywordTransient,
	"try":          KindKeywordTry,
	"void":         KindKeywordVoid,
	"volatile":     KindKeywordVolatile,
	"while":        KindKeywordWhile,
	"true":         KindBoolLiteral,
	"false":        KindBoolLiteral,
	"null":         KindNullLiteral,
}

// contextualKeywords are identifiers that act as keywords only in specific
// grammar positions ("var", "yield", "sealed", "permits", "non-sealed",
// "record") per JLS §3.9 and are lexed as plain KindIdentifier; the parser
// distinguishes them positionally.
var contextualKeywords = map[string]bool{
	"var":        true,
	"yield":      true,
	"sealed":     true,
	"permits":    true,
	"record":     true,
	"module":     true,
	"requires":   true,
	"exports":    true,
	"opens":      true,
	"uses":       true,
	"provides":   true,
	"with":       true,
	"to":         true,
	"transitive": true,
	"open":       true,
}

// IsContextualKeyword reports whether ident is a contextual keyword in some
// grammar position.
func IsContextualKeyword(ident string) bool { return contextualKeywords[ident] }

func (k Kind) IsTrivia() bool {
	return k == KindWhitespace || k == KindLineComment || k == KindBlockComment
}

func (k Kind) IsKeyword() bool {
	return k >= KindKeywordAbstract && k <= KindKeywordNonSealed
}
