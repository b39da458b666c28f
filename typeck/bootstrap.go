package typeck

import "nova/types"

// seedWellKnownMembers populates a handful of java.lang.String/Object method
// signatures directly, standing in for the classfile-derived members a loaded
// classpath would normally contribute. jdk.Index in this build never parses
// real classfiles (see jdk.Load's doc comment) — without this, every
// WellKnown class is a nameless stub, and none of the goto/type-at-offset
// scenarios original_source's typeck.rs exercises against java.lang.String
// (substring, length, concat via "+") would have anything to resolve against.
// This is intentionally the minimum needed for those scenarios, not a JDK
// model; a later classpath-backed build replaces it wholesale.
func (c *Checker) seedWellKnownMembers() {
	wk := c.store.WellKnown()

	objectDef, _ := c.store.Class(wk.Object)
	objectDef.Methods = append(objectDef.Methods,
		types.MethodDef{Name: "toString", ReturnType: types.ClassType(wk.String)},
		types.MethodDef{Name: "equals", ReturnType: types.PrimitiveType(types.Boolean),
			Params: []types.Type{types.ClassType(wk.Object)}},
		types.MethodDef{Name: "hashCode", ReturnType: types.PrimitiveType(types.Int)},
	)

	stringDef, _ := c.store.Class(wk.String)
	stringDef.SuperClass = ptr(types.ClassType(wk.Object))
	stringDef.Methods = append(stringDef.Methods,
		types.MethodDef{Name: "length", ReturnType: types.PrimitiveType(types.Int)},
		types.MethodDef{Name: "substring", ReturnType: types.ClassType(wk.String),
			Params: []types.Type{types.PrimitiveType(types.Int)}},
		types.MethodDef{Name: "substring", ReturnType: types.ClassType(wk.String),
			Params: []types.Type{types.PrimitiveType(types.Int), types.PrimitiveType(types.Int)}},
		types.MethodDef{Name: "charAt", ReturnType: types.PrimitiveType(types.Char),
			Params: []types.Type{types.PrimitiveType(types.Int)}},
		types.MethodDef{Name: "concat", ReturnType: types.ClassType(wk.String),
			Params: []types.Type{types.ClassType(wk.String)}},
		types.MethodDef{Name: "isEmpty", ReturnType: types.PrimitiveType(types.Boolean)},
		types.MethodDef{Name: "equals", ReturnType: types.PrimitiveType(types.Boolean),
			Params: []types.Type{types.ClassType(wk.Object)}},
	)
}

func ptr(t types.Type) *types.Type { return &t }
