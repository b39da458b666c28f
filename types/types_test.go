package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitiveWidening(t *testing.T) {
	env := NewStore()
	require.True(t, IsSubtype(env, PrimitiveType(Int), PrimitiveType(Long)))
	require.True(t, IsSubtype(env, PrimitiveType(Char), PrimitiveType(Int)))
	require.False(t, IsSubtype(env, PrimitiveType(Long), PrimitiveType(Int)))
	require.True(t, IsSubtype(env, PrimitiveType(Int), PrimitiveType(Int)))
}

func TestClassHierarchySubtyping(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()

	runnable := env.InternClass(ClassDef{Name: "java.lang.Runnable"})
	base := env.InternClass(ClassDef{Name: "com.example.Base"})
	derived := env.InternClass(ClassDef{
		Name:       "com.example.Derived",
		SuperClass: &Type{Kind: KindClass, Class: base},
		Interfaces: []Type{{Kind: KindClass, Class: runnable}},
	})

	require.True(t, IsSubtype(env, ClassType(derived), ClassType(base)))
	require.True(t, IsSubtype(env, ClassType(derived), ClassType(runnable)))
	require.True(t, IsSubtype(env, ClassType(derived), ClassType(wk.Object)))
	require.False(t, IsSubtype(env, ClassType(base), ClassType(derived)))
}

func TestNullIsSubtypeOfEveryReferenceType(t *testing.T) {
	env := NewStore()
	require.True(t, IsSubtype(env, NullType(), ClassType(env.WellKnown().String)))
	require.False(t, IsSubtype(env, NullType(), PrimitiveType(Int)))
}

func TestArrayCovariance(t *testing.T) {
	env := NewStore()
	base := env.InternClass(ClassDef{Name: "com.example.Base"})
	derived := env.InternClass(ClassDef{Name: "com.example.Derived", SuperClass: &Type{Kind: KindClass, Class: base}})

	require.True(t, IsSubtype(env, ArrayType(ClassType(derived)), ArrayType(ClassType(base))))
	require.True(t, IsSubtype(env, ArrayType(ClassType(derived)), ClassType(env.WellKnown().Object)))
	require.False(t, IsSubtype(env, ArrayType(PrimitiveType(Int)), ArrayType(PrimitiveType(Long))))
}

func TestAssignableBoxingAndUnboxing(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()
	require.True(t, IsAssignable(env, PrimitiveType(Int), ClassType(wk.BoxedInt)))
	require.True(t, IsAssignable(env, ClassType(wk.BoxedInt), PrimitiveType(Int)))
	require.True(t, IsAssignable(env, ClassType(wk.BoxedInt), PrimitiveType(Long)))
	require.False(t, IsAssignable(env, ClassType(wk.BoxedInt), PrimitiveType(Boolean)))
}

func TestLeastUpperBoundCommonAncestor(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()
	base := env.InternClass(ClassDef{Name: "com.example.Base", SuperClass: &Type{Kind: KindClass, Class: wk.Object}})
	left := env.InternClass(ClassDef{Name: "com.example.Left", SuperClass: &Type{Kind: KindClass, Class: base}})
	right := env.InternClass(ClassDef{Name: "com.example.Right", SuperClass: &Type{Kind: KindClass, Class: base}})

	lub := LeastUpperBound(env, ClassType(left), ClassType(right))
	require.Equal(t, ClassType(base), lub)
}

func TestResolveOverloadPhase1PrefersExactMatch(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()
	owner := env.InternClass(ClassDef{Name: "com.example.Widget"})

	candidates := []MethodDef{
		{Name: "describe", Params: []Type{ClassType(wk.String)}},
		{Name: "describe", Params: []Type{ClassType(wk.Object)}},
	}

	resolved, ok, ambiguous := ResolveOverload(env, owner, candidates, []Type{ClassType(wk.String)})
	require.True(t, ok)
	require.False(t, ambiguous)
	require.Equal(t, []Type{ClassType(wk.String)}, resolved.Params)
}

func TestResolveOverloadVarargsPhase(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()
	owner := env.InternClass(ClassDef{Name: "com.example.Widget"})

	candidates := []MethodDef{
		{Name: "sum", Params: []Type{ArrayType(PrimitiveType(Int))}, IsVarargs: true},
	}

	_, ok, ambiguous := ResolveOverload(env, owner, candidates, []Type{PrimitiveType(Int), PrimitiveType(Int), PrimitiveType(Int)})
	require.True(t, ok)
	require.False(t, ambiguous)
}

func TestResolveOverloadAmbiguousTie(t *testing.T) {
	env := NewStore()
	wk := env.WellKnown()
	owner := env.InternClass(ClassDef{Name: "com.example.Widget"})

	a := env.InternClass(ClassDef{Name: "com.example.A"})
	b := env.InternClass(ClassDef{Name: "com.example.B"})
	candidates := []MethodDef{
		{Name: "foo", Params: []Type{ClassType(a)}},
		{Name: "foo", Params: []Type{ClassType(b)}},
	}

	_, ok, ambiguous := ResolveOverload(env, owner, candidates, []Type{NullType()})
	require.False(t, ok)
	require.True(t, ambiguous)
	_ = wk
}

func TestFormatTypeElidesPackageAndUnnestsDollar(t *testing.T) {
	env := NewStore()
	entry := env.InternClass(ClassDef{Name: "java.util.Map$Entry"})
	require.Equal(t, "Map.Entry", FormatType(env, ClassType(entry)))
}

func TestFormatTypeArray(t *testing.T) {
	env := NewStore()
	require.Equal(t, "int[]", FormatType(env, ArrayType(PrimitiveType(Int))))
	require.Equal(t, "int[][]", FormatType(env, ArrayType(ArrayType(PrimitiveType(Int)))))
}

func TestFormatMethodSignatureConstructorUsesOwnerName(t *testing.T) {
	env := NewStore()
	owner := env.InternClass(ClassDef{Name: "com.example.Widget"})
	ctor := MethodDef{Name: ConstructorName, Params: []Type{PrimitiveType(Int)}}
	require.Equal(t, "Widget(int)", FormatMethodSignature(env, owner, ctor))
}

func TestFormatMethodSignatureWithTypeParamsAndVarargs(t *testing.T) {
	env := NewStore()
	owner := env.InternClass(ClassDef{Name: "com.example.Widget"})
	tv := env.InternTypeParam(TypeParamDef{Name: "T"})
	m := MethodDef{
		Name:       "of",
		TypeParams: []TypeVarId{tv},
		ReturnType: TypeVar(tv),
		Params:     []Type{ArrayType(TypeVar(tv))},
		IsVarargs:  true,
	}
	require.Equal(t, "<T> T of(T...)", FormatMethodSignature(env, owner, m))
}
