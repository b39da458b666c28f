// Package types is Nova's type system (spec §4.9): type representations,
// subtyping/assignability, least-upper-bound computation, and JLS §15.12.2
// overload resolution. It is deliberately decoupled from hir/resolve — it
// operates over a ClassId-addressed TypeEnv rather than hir.ItemTree, so the
// same subtype/overload machinery works whether a class definition came
// from a source file's item tree or a classfile read off the classpath.
package types

// TypeKind identifies which fields of a Type are meaningful, the same flat
// tagged-struct idiom hir uses for Stmt/Expr (itself grounded on
// classfile.ConstantPoolEntry's Tag-plus-shared-fields shape) rather than a
// Go interface per variant. Grounded on original_source's nova-types Type
// enum (exercised throughout java/format.rs).
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindPrimitive
	KindClass
	KindArray
	KindTypeVar
	KindWildcard
	KindIntersection
	KindNull
	KindNamed // an unresolved/textual type name, kept for best-effort recovery
	KindVirtualInner
	KindUnknown
	KindError
)

// PrimitiveKind enumerates Java's eight primitive types.
type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

// WildcardKind distinguishes a capture wildcard's three forms.
type WildcardKind int

const (
	WildcardUnbounded WildcardKind = iota
	WildcardExtends
	WildcardSuper
)

// ClassId indexes into a TypeEnv's class table. Unlike hir.ClassId (which
// indexes one file's ItemTree), a types.ClassId identifies a class
// definition regardless of whether it came from source or a classfile.
type ClassId uint32

// TypeVarId indexes into a TypeEnv's type-parameter table.
type TypeVarId uint32

// Type is one Java type value: a primitive, a parameterized class, an array,
// a type variable reference, a wildcard, an intersection type (from a type
// variable's multiple bounds), null, an array, or one of the degenerate
// Named/VirtualInner/Unknown/Error forms used before/without full resolution.
// Only the fields relevant to Kind are populated.
type Type struct {
	Kind TypeKind

	Primitive PrimitiveKind // KindPrimitive

	Class    ClassId // KindClass, KindVirtualInner (as Owner)
	TypeArgs []Type  // KindClass

	Elem *Type // KindArray: element type (arrays nest, so []Type isn't needed)

	Var TypeVarId // KindTypeVar

	Wildcard      WildcardKind // KindWildcard
	WildcardBound *Type        // KindWildcard, Extends/Super only

	Members []Type // KindIntersection

	Name string // KindNamed, KindVirtualInner (inner simple name)
}

// Void, NullType and Unknown/Error are stateless; convenience constructors
// avoid repeating the kind-only literal at every call site.
func Void() Type      { return Type{Kind: KindVoid} }
func NullType() Type  { return Type{Kind: KindNull} }
func Unknown() Type   { return Type{Kind: KindUnknown} }
func ErrorType() Type { return Type{Kind: KindError} }

func PrimitiveType(p PrimitiveKind) Type { return Type{Kind: KindPrimitive, Primitive: p} }

func ClassType(id ClassId, args ...Type) Type {
	return Type{Kind: KindClass, Class: id, TypeArgs: args}
}

func ArrayType(elem Type) Type { return Type{Kind: KindArray, Elem: &elem} }

func TypeVar(id TypeVarId) Type { return Type{Kind: KindTypeVar, Var: id} }

func UnboundedWildcard() Type { return Type{Kind: KindWildcard, Wildcard: WildcardUnbounded} }

func ExtendsWildcard(upper Type) Type {
	return Type{Kind: KindWildcard, Wildcard: WildcardExtends, WildcardBound: &upper}
}

func SuperWildcard(lower Type) Type {
	return Type{Kind: KindWildcard, Wildcard: WildcardSuper, WildcardBound: &lower}
}

func Intersection(members ...Type) Type {
	return Type{Kind: KindIntersection, Members: members}
}

// peelArrayDims unwraps nested KindArray layers, returning the innermost
// element type and how many array dimensions were peeled.
func peelArrayDims(t Type) (Type, int) {
	dims := 0
	for t.Kind == KindArray {
		dims++
		t = *t.Elem
	}
	return t, dims
}

// IsReference reports whether t is a reference type (everything except void
// and the primitives) — used throughout subtype.go to gate boxing rules.
func (t Type) IsReference() bool {
	switch t.Kind {
	case KindVoid, KindPrimitive:
		return false
	default:
		return true
	}
}
