package types

// ResolveOverload implements JLS §15.12.2's three-phase applicability and
// most-specific-method selection (simplified per spec §4.9): phase 1
// (strict invocation, no boxing, no varargs), phase 2 (loose invocation,
// boxing/unboxing allowed, still no varargs), phase 3 (variable arity).
// Resolution stops at the first phase with any applicable candidate.
//
// Returns the chosen method and true on a unique winner; an ambiguous tie
// reports ok=false, ambiguous=true so callers (typeck) can emit
// `ambiguous-call` while demand-driven helpers like resolve_method_call
// still return None, per spec §4.11's degrade-gracefully policy.
func ResolveOverload(env TypeEnv, owner ClassId, candidates []MethodDef, args []Type) (method ResolvedMethod, ok bool, ambiguous bool) {
	for _, phase := range []func(TypeEnv, MethodDef, []Type) bool{
		strictApplicable, looseApplicable, variableArityApplicable,
	} {
		var applicable []MethodDef
		for _, c := range candidates {
			if phase(env, c, args) {
				applicable = append(applicable, c)
			}
		}
		if len(applicable) == 0 {
			continue
		}
		winner, unique := mostSpecific(env, applicable)
		if !unique {
			return ResolvedMethod{}, false, true
		}
		return ResolvedMethod{
			Owner:      owner,
			Name:       winner.Name,
			ReturnType: winner.ReturnType,
			Params:     winner.Params,
			IsVarargs:  winner.IsVarargs,
		}, true, false
	}
	return ResolvedMethod{}, false, false
}

func strictApplicable(env TypeEnv, m MethodDef, args []Type) bool {
	if len(m.Params) != len(args) {
		return false
	}
	for i, p := range m.Params {
		if !IsSubtype(env, args[i], p) && args[i].Kind != KindNull {
			return false
		}
		if args[i].Kind == KindNull && !p.IsReference() {
			return false
		}
	}
	return true
}

func looseApplicable(env TypeEnv, m MethodDef, args []Type) bool {
	if len(m.Params) != len(args) {
		return false
	}
	for i, p := range m.Params {
		if !IsAssignable(env, args[i], p) {
			return false
		}
	}
	return true
}

// variableArityApplicable treats m's trailing parameter as the element type
// of an implicit array, per JLS §15.12.2.4: every argument at or past that
// position need only be assignable to the element type (or the caller
// passed the array itself, in which case it's checked like any other
// parameter — not separately modeled here, matching spec §4.9's
// "simplified" framing for varargs).
func variableArityApplicable(env TypeEnv, m MethodDef, args []Type) bool {
	if !m.IsVarargs || len(m.Params) == 0 {
		return false
	}
	fixed := m.Params[:len(m.Params)-1]
	if len(args) < len(fixed) {
		return false
	}
	for i, p := range fixed {
		if !IsAssignable(env, args[i], p) {
			return false
		}
	}
	variadic := m.Params[len(m.Params)-1]
	elem := variadic
	if variadic.Kind == KindArray {
		elem = *variadic.Elem
	}
	for _, a := range args[len(fixed):] {
		if !IsAssignable(env, a, elem) {
			return false
		}
	}
	return true
}

// mostSpecific picks the candidate whose parameter list is a subtype of every
// other candidate's (JLS §15.12.2.5, simplified to apply strict
// applicability pairwise rather than the full generic-inference variant).
// Zero or more-than-one maximal candidate is an ambiguity.
func mostSpecific(env TypeEnv, candidates []MethodDef) (MethodDef, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	var winners []MethodDef
	for _, a := range candidates {
		moreSpecificThanAll := true
		for _, b := range candidates {
			if sameMethodDef(a, b) {
				continue
			}
			if !paramsSubtypeOf(env, a, b) {
				moreSpecificThanAll = false
				break
			}
		}
		if moreSpecificThanAll {
			winners = append(winners, a)
		}
	}
	if len(winners) != 1 {
		return MethodDef{}, false
	}
	return winners[0], true
}

func sameMethodDef(a, b MethodDef) bool {
	if a.Name != b.Name || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !sameType(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

// paramsSubtypeOf reports whether every one of a's parameter types is a
// subtype of the corresponding parameter of b — "a is applicable by strict
// invocation to b's parameter types", JLS's definition of "more specific".
func paramsSubtypeOf(env TypeEnv, a, b MethodDef) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !IsSubtype(env, a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}
