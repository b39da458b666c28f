package types

import "strings"

// FormatType renders ty the way a Java source file would spell it: package
// prefixes elided, nested classes joined by "." instead of "$". Ported from
// original_source's nova-types java/format.rs fmt_type, trading its
// fmt::Display visitor for a plain strings.Builder walk.
func FormatType(env TypeEnv, ty Type) string {
	var b strings.Builder
	writeType(env, &b, ty)
	return b.String()
}

func writeType(env TypeEnv, b *strings.Builder, ty Type) {
	switch ty.Kind {
	case KindVoid:
		b.WriteString("void")
	case KindPrimitive:
		b.WriteString(primitiveName(ty.Primitive))
	case KindClass:
		writeClassId(env, b, ty.Class)
		writeTypeArgs(env, b, ty.TypeArgs)
	case KindArray:
		base, dims := peelArrayDims(ty)
		writeType(env, b, base)
		for i := 0; i < dims; i++ {
			b.WriteString("[]")
		}
	case KindTypeVar:
		writeTypeVar(env, b, ty.Var)
	case KindWildcard:
		switch ty.Wildcard {
		case WildcardUnbounded:
			b.WriteString("?")
		case WildcardExtends:
			b.WriteString("? extends ")
			writeType(env, b, *ty.WildcardBound)
		case WildcardSuper:
			b.WriteString("? super ")
			writeType(env, b, *ty.WildcardBound)
		}
	case KindIntersection:
		for i, m := range ty.Members {
			if i != 0 {
				b.WriteString(" & ")
			}
			writeType(env, b, m)
		}
		if len(ty.Members) == 0 {
			b.WriteString("<?>")
		}
	case KindNull:
		b.WriteString("null")
	case KindNamed:
		b.WriteString(ty.Name)
	case KindVirtualInner:
		writeClassId(env, b, ty.Class)
		b.WriteByte('.')
		b.WriteString(ty.Name)
	case KindUnknown:
		b.WriteString("<?>")
	case KindError:
		b.WriteString("<error>")
	}
}

func primitiveName(p PrimitiveKind) string {
	switch p {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Char:
		return "char"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	}
	return "<?>"
}

func writeTypeArgs(env TypeEnv, b *strings.Builder, args []Type) {
	if len(args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, a := range args {
		if i != 0 {
			b.WriteString(", ")
		}
		writeType(env, b, a)
	}
	b.WriteByte('>')
}

func writeClassId(env TypeEnv, b *strings.Builder, id ClassId) {
	def, ok := env.Class(id)
	if !ok {
		b.WriteString("<class#")
		writeUint(b, uint32(id))
		b.WriteByte('>')
		return
	}
	writeClassName(b, def.Name)
}

// writeClassName renders a stored binary name (package segments joined by
// ".", nested classes joined by "$", per typestore.go's dotted()) the way
// Java source spells it: drop the package prefix, render nesting with "."
// instead of "$". Ported directly from fmt_class_name.
func writeClassName(b *strings.Builder, binaryName string) {
	classPart := binaryName
	if i := strings.LastIndexByte(binaryName, '.'); i >= 0 {
		classPart = binaryName[i+1:]
	}
	for _, ch := range classPart {
		if ch == '$' {
			b.WriteByte('.')
		} else {
			b.WriteRune(ch)
		}
	}
}

func writeTypeVar(env TypeEnv, b *strings.Builder, id TypeVarId) {
	if tp, ok := env.TypeParam(id); ok {
		b.WriteString(tp.Name)
		return
	}
	b.WriteString("<tv#")
	writeUint(b, uint32(id))
	b.WriteByte('>')
}

func writeUint(b *strings.Builder, n uint32) {
	if n == 0 {
		b.WriteByte('0')
		return
	}
	var digits [10]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	b.Write(digits[i:])
}

// FormatMethodSignature renders a declared method/constructor signature
// (type params, name-or-owner-for-a-constructor, parameter list), ported
// from fmt_method_signature.
func FormatMethodSignature(env TypeEnv, owner ClassId, m MethodDef) string {
	var b strings.Builder
	writeTypeParamList(env, &b, m.TypeParams)
	if m.Name == ConstructorName {
		writeClassId(env, &b, owner)
	} else {
		writeType(env, &b, m.ReturnType)
		b.WriteByte(' ')
		b.WriteString(m.Name)
	}
	writeParamList(env, &b, m.Params, m.IsVarargs)
	return b.String()
}

// FormatResolvedMethod renders a ResolvedMethod the same way, minus type
// parameters (a resolved call site has already substituted them away).
func FormatResolvedMethod(env TypeEnv, m ResolvedMethod) string {
	var b strings.Builder
	if m.Name == ConstructorName {
		writeClassId(env, &b, m.Owner)
	} else {
		writeType(env, &b, m.ReturnType)
		b.WriteByte(' ')
		b.WriteString(m.Name)
	}
	writeParamList(env, &b, m.Params, m.IsVarargs)
	return b.String()
}

func writeTypeParamList(env TypeEnv, b *strings.Builder, params []TypeVarId) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('<')
	for i, id := range params {
		if i != 0 {
			b.WriteString(", ")
		}
		writeTypeParamDecl(env, b, id)
	}
	b.WriteString("> ")
}

func writeTypeParamDecl(env TypeEnv, b *strings.Builder, id TypeVarId) {
	tp, ok := env.TypeParam(id)
	if !ok {
		b.WriteString("<tv#")
		writeUint(b, uint32(id))
		b.WriteByte('>')
		return
	}
	b.WriteString(tp.Name)

	bounds := tp.UpperBounds
	if len(bounds) == 0 || (len(bounds) == 1 && isObjectBound(env, bounds[0])) {
		return
	}
	b.WriteString(" extends ")
	for i, bound := range bounds {
		if i != 0 {
			b.WriteString(" & ")
		}
		writeType(env, b, bound)
	}
}

func isObjectBound(env TypeEnv, ty Type) bool {
	return ty.Kind == KindClass && ty.Class == env.WellKnown().Object && len(ty.TypeArgs) == 0
}

func writeParamList(env TypeEnv, b *strings.Builder, params []Type, isVarargs bool) {
	b.WriteByte('(')
	for i, p := range params {
		if i != 0 {
			b.WriteString(", ")
		}
		if isVarargs && i == len(params)-1 {
			if p.Kind == KindArray {
				writeType(env, b, *p.Elem)
			} else {
				writeType(env, b, p)
			}
			b.WriteString("...")
		} else {
			writeType(env, b, p)
		}
	}
	b.WriteByte(')')
}
