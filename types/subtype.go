package types

// IsSubtype reports whether sub <: sup per JLS §4.10, covering primitive
// widening, class/interface hierarchy walking, array covariance, and the
// type-variable/wildcard/intersection forms the checker encounters. It is
// a best-effort structural check: an unresolved (KindNamed) or KindUnknown
// operand is never a subtype failure — see flow's failure model note,
// which this mirrors — so the checker degrades instead of false-alarming
// on input it couldn't fully resolve.
func IsSubtype(env TypeEnv, sub, sup Type) bool {
	if sub.Kind == KindUnknown || sup.Kind == KindUnknown {
		return true
	}
	if sameType(sub, sup) {
		return true
	}

	switch sub.Kind {
	case KindNull:
		return sup.IsReference()
	case KindPrimitive:
		return sup.Kind == KindPrimitive && widens(sub.Primitive, sup.Primitive)
	case KindClass:
		return classIsSubtype(env, sub, sup)
	case KindArray:
		return arrayIsSubtype(env, sub, sup)
	case KindTypeVar:
		tp, ok := env.TypeParam(sub.Var)
		if !ok {
			return false
		}
		for _, bound := range tp.UpperBounds {
			if IsSubtype(env, bound, sup) {
				return true
			}
		}
		return false
	case KindIntersection:
		for _, member := range sub.Members {
			if IsSubtype(env, member, sup) {
				return true
			}
		}
		return false
	}
	return false
}

func sameType(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindVoid, KindNull, KindUnknown, KindError:
		return true
	case KindPrimitive:
		return a.Primitive == b.Primitive
	case KindTypeVar:
		return a.Var == b.Var
	case KindClass:
		if a.Class != b.Class || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !sameType(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KindArray:
		return sameType(*a.Elem, *b.Elem)
	case KindNamed:
		return a.Name == b.Name
	default:
		return false
	}
}

// primitiveWidenTargets maps each primitive to the primitives it widens to
// per JLS §5.1.2 (a primitive does not widen to itself here — sameType
// already covers identity).
var primitiveWidenTargets = map[PrimitiveKind][]PrimitiveKind{
	Byte:  {Short, Int, Long, Float, Double},
	Short: {Int, Long, Float, Double},
	Char:  {Int, Long, Float, Double},
	Int:   {Long, Float, Double},
	Long:  {Float, Double},
	Float: {Double},
}

func widens(from, to PrimitiveKind) bool {
	for _, t := range primitiveWidenTargets[from] {
		if t == to {
			return true
		}
	}
	return false
}

// classIsSubtype walks sub's superclass and superinterface edges looking
// for sup's class (ignoring type-argument variance: two parameterizations
// of the same generic class are treated as related iff the erased classes
// are related, a simplification spec §4.9 explicitly allows — "best-effort"
// generics).
func classIsSubtype(env TypeEnv, sub, sup Type) bool {
	if sup.Kind != KindClass {
		if sup.Kind == KindIntersection {
			for _, m := range sup.Members {
				if !classIsSubtype(env, sub, m) {
					return false
				}
			}
			return true
		}
		return false
	}
	return classReaches(env, sub.Class, sup.Class, make(map[ClassId]bool))
}

func classReaches(env TypeEnv, from, to ClassId, visited map[ClassId]bool) bool {
	if from == to {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true

	def, ok := env.Class(from)
	if !ok {
		return false
	}
	if def.SuperClass != nil && def.SuperClass.Kind == KindClass {
		if classReaches(env, def.SuperClass.Class, to, visited) {
			return true
		}
	} else if from != env.WellKnown().Object {
		// No explicit superclass recorded and this isn't Object itself:
		// every class/interface without a more specific supertype still
		// extends Object.
		if env.WellKnown().Object == to {
			return true
		}
	}
	for _, iface := range def.Interfaces {
		if iface.Kind == KindClass && classReaches(env, iface.Class, to, visited) {
			return true
		}
	}
	return false
}

// arrayIsSubtype implements Java's covariant array subtyping: T[] <: S[]
// iff T <: S (for reference T/S), and every reference array is also a
// subtype of Object (and, structurally, Cloneable/Serializable, which this
// simplified model does not separately track).
func arrayIsSubtype(env TypeEnv, sub, sup Type) bool {
	if sup.Kind == KindClass && sup.Class == env.WellKnown().Object && len(sup.TypeArgs) == 0 {
		return true
	}
	if sup.Kind != KindArray {
		return false
	}
	subElem, supElem := *sub.Elem, *sup.Elem
	if subElem.Kind == KindPrimitive || supElem.Kind == KindPrimitive {
		return sameType(subElem, supElem)
	}
	return IsSubtype(env, subElem, supElem)
}

// boxedFor maps a primitive to its wrapper class, used by both
// IsAssignable (boxing conversions) and overload.go's phase-2 applicability.
func boxedFor(wk WellKnown, p PrimitiveKind) ClassId {
	switch p {
	case Boolean:
		return wk.BoxedBoolean
	case Byte:
		return wk.BoxedByte
	case Short:
		return wk.BoxedShort
	case Char:
		return wk.BoxedChar
	case Int:
		return wk.BoxedInt
	case Long:
		return wk.BoxedLong
	case Float:
		return wk.BoxedFloat
	case Double:
		return wk.BoxedDouble
	}
	return ClassId(0)
}

// unboxedFor is boxedFor's inverse: if id names one of the eight wrapper
// classes, it reports the primitive it unboxes to.
func unboxedFor(wk WellKnown, id ClassId) (PrimitiveKind, bool) {
	switch id {
	case wk.BoxedBoolean:
		return Boolean, true
	case wk.BoxedByte:
		return Byte, true
	case wk.BoxedShort:
		return Short, true
	case wk.BoxedChar:
		return Char, true
	case wk.BoxedInt:
		return Int, true
	case wk.BoxedLong:
		return Long, true
	case wk.BoxedFloat:
		return Float, true
	case wk.BoxedDouble:
		return Double, true
	}
	return 0, false
}

// IsAssignable reports whether a value of type from can be assigned to a
// variable of type to, per JLS §5.2: subtyping, plus boxing/unboxing (a
// primitive's wrapper assigned from/to the primitive), plus widening
// reference conversions via IsSubtype. Captured wildcards are treated as a
// fresh type variable whose bound is its Extends bound (or Object if
// unbounded/Super), matching spec §4.9's "captured wildcards as fresh type
// variables" note.
func IsAssignable(env TypeEnv, from, to Type) bool {
	if IsSubtype(env, from, to) {
		return true
	}
	wk := env.WellKnown()
	if from.Kind == KindPrimitive && to.Kind == KindClass {
		boxed := boxedFor(wk, from.Primitive)
		return boxed == to.Class && len(to.TypeArgs) == 0
	}
	if from.Kind == KindClass && to.Kind == KindPrimitive {
		if p, ok := unboxedFor(wk, from.Class); ok {
			return p == to.Primitive || widens(p, to.Primitive)
		}
		return false
	}
	if to.Kind == KindWildcard {
		return IsAssignable(env, from, captureBound(env, to))
	}
	return false
}

// captureBound returns the effective upper bound a wildcard capture checks
// assignability against.
func captureBound(env TypeEnv, w Type) Type {
	if w.Wildcard == WildcardExtends && w.WildcardBound != nil {
		return *w.WildcardBound
	}
	return ClassType(env.WellKnown().Object)
}

// LeastUpperBound computes a best-effort common supertype of a and b for
// conditional-expression (`cond ? a : b`) typing. It is not JLS's full lub()
// (which intersects all minimal erased supertypes); it walks a's ancestor
// chain looking for the first class b is also a subtype of, falling back to
// Object, matching the "best-effort" framing spec §4.9 gives generic
// inference.
func LeastUpperBound(env TypeEnv, a, b Type) Type {
	if sameType(a, b) {
		return a
	}
	if a.Kind == KindNull {
		return b
	}
	if b.Kind == KindNull {
		return a
	}
	if a.Kind == KindPrimitive && b.Kind == KindPrimitive {
		if widens(a.Primitive, b.Primitive) {
			return b
		}
		if widens(b.Primitive, a.Primitive) {
			return a
		}
	}
	if a.Kind == KindClass && b.Kind == KindClass {
		for id, ok := a.Class, true; ok; {
			if classReaches(env, b.Class, id, make(map[ClassId]bool)) {
				return ClassType(id)
			}
			def, found := env.Class(id)
			if !found || def.SuperClass == nil || def.SuperClass.Kind != KindClass {
				break
			}
			id, ok = def.SuperClass.Class, true
		}
	}
	return ClassType(env.WellKnown().Object)
}
