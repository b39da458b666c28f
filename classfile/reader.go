package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"nova/internal/logging"
)

// magic is the classfile format marker (JVMS §4.1), 0xCAFEBABE.
const magic = 0xCAFEBABE

// AccessFlags mirrors JVMS §4.1 table 4.1-A access_flags bits, shared by
// classes, fields and methods (each context only uses the subset that
// applies to it).
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccBridge       AccessFlags = 0x0040
	AccVolatile     AccessFlags = 0x0040
	AccVarargs      AccessFlags = 0x0080
	AccTransient    AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// Attribute is a single generic attribute_info entry; Nova decodes the
// handful listed in Class/Field/Method below and keeps the rest as opaque
// bytes for forward-compatibility with attribute kinds it does not need.
type Attribute struct {
	Name string
	Data []byte
}

// Field is a parsed field_info (JVMS §4.5).
type Field struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Signature   string // from a Signature attribute, empty if absent
	Attributes  []Attribute
}

// Method is a parsed method_info (JVMS §4.6). Code is never decoded; only
// its presence matters to Nova (a method with no Code attribute and no
// Abstract/Native flag is a classfile format error the reader surfaces as a
// diagnostic upstream, never here).
type Method struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Signature   string
	Attributes  []Attribute
}

// Class is a fully parsed classfile, stopping at declaration shape: constant
// pool, access flags, super/interfaces, fields, methods, and the attributes
// Nova's resolver and type system consume.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    string
	SuperClass   string // empty for java/lang/Object
	Interfaces   []string
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute

	// Signature is the class's generic signature, if any (JVMS §4.7.9).
	Signature string
	// InnerClasses lists nested-class bindings decoded from an InnerClasses
	// attribute (JVMS §4.7.6), used by resolve (§4.8) to reconstruct binary
	// name -> simple name -> enclosing class relationships.
	InnerClasses []InnerClass
	// ModuleName/ModuleAutomatic describe a module-info.class or an
	// automatic-module-name-derived identity, consumed by classpath (§4.3).
	ModuleName      string
	ModuleAutomatic bool
	// ModuleRequires/ModuleExports/ModuleOpens are decoded from a
	// module-info.class's Module attribute (JVMS §4.7.25), consumed by
	// resolve (§4.8) to enforce JPMS export/open visibility: a package not
	// listed in ModuleExports or ModuleOpens is invisible to any module
	// that isn't this one, regardless of whether the binary name otherwise
	// resolves on the classpath. Qualified exports/opens ("exports P to
	// Q") are recorded the same as unqualified ones — this module doesn't
	// track the specific target-module list, only that P is exported to
	// *someone*, which is the detail resolve's filtering needs.
	ModuleRequires []string
	ModuleExports  []string
	ModuleOpens    []string
}

// InnerClass is one entry of an InnerClasses attribute.
type InnerClass struct {
	InnerName   string
	OuterName   string // empty for anonymous/local classes
	SimpleName  string // empty if the inner class is anonymous
	AccessFlags AccessFlags
}

type reader struct {
	b   []byte
	pos int
	log *logging.Logger
}

func (r *reader) u1() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u2() (uint16, error) {
	if r.pos+2 > len(r.b) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytesN(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Parse reads a full classfile from b, returning a declaration-shape Class.
// Parse never partially trusts a malformed file: any structural error aborts
// with a descriptive error rather than returning a half-populated Class,
// matching spec §7's "system failure -> cache miss" handling one level up in
// classpath.
func Parse(b []byte) (*Class, error) {
	r := &reader{b: b, log: logging.Get(logging.CategoryClassfile)}
	timer := logging.StartTimer(logging.CategoryClassfile, "Parse")
	defer timer.Stop()

	got, err := r.u4()
	if err != nil {
		return nil, err
	}
	if got != magic {
		return nil, fmt.Errorf("classfile: bad magic 0x%08X", got)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, err
	}
	major, err := r.u2()
	if err != nil {
		return nil, err
	}

	pool, err := r.readConstantPool()
	if err != nil {
		return nil, err
	}

	access, err := r.u2()
	if err != nil {
		return nil, err
	}
	thisIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	superIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	thisName, _ := pool.ClassNameAt(thisIdx)
	var superName string
	if superIdx != 0 {
		superName, _ = pool.ClassNameAt(superIdx)
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]string, 0, ifaceCount)
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		name, _ := pool.ClassNameAt(idx)
		interfaces = append(interfaces, name)
	}

	fields, err := r.readFields(pool)
	if err != nil {
		return nil, err
	}
	methods, err := r.readMethods(pool)
	if err != nil {
		return nil, err
	}
	attrs, err := r.readAttributes(pool)
	if err != nil {
		return nil, err
	}

	c := &Class{
		MinorVersion: minor,
		MajorVersion: major,
		Pool:         pool,
		AccessFlags:  AccessFlags(access),
		ThisClass:    thisName,
		SuperClass:   superName,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}
	applyClassAttributes(c, pool)
	return c, nil
}

func (r *reader) readConstantPool() (*ConstantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	entries := make([]ConstantPoolEntry, count)
	for i := 1; i < int(count); i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		e := ConstantPoolEntry{Tag: Tag(tag)}
		switch Tag(tag) {
		case TagUTF8:
			length, err := r.u2()
			if err != nil {
				return nil, err
			}
			raw, err := r.bytesN(int(length))
			if err != nil {
				return nil, err
			}
			e.UTF8 = decodeModifiedUTF8(raw)
		case TagInteger:
			v, err := r.u4()
			if err != nil {
				return nil, err
			}
			e.Int = int32(v)
		case TagFloat:
			v, err := r.u4()
			if err != nil {
				return nil, err
			}
			e.Float = decodeFloat32(v)
		case TagLong:
			hi, err := r.u4()
			if err != nil {
				return nil, err
			}
			lo, err := r.u4()
			if err != nil {
				return nil, err
			}
			e.Long = int64(hi)<<32 | int64(lo)
			entries[i] = e
			i++ // Long occupies two slots (JVMS §4.4.5)
			continue
		case TagDouble:
			hi, err := r.u4()
			if err != nil {
				return nil, err
			}
			lo, err := r.u4()
			if err != nil {
				return nil, err
			}
			e.Double = decodeFloat64(uint64(hi)<<32 | uint64(lo))
			entries[i] = e
			i++
			continue
		case TagClass, TagString, TagModule, TagPackage:
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.NameIndex = idx
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			classIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			ntIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.ClassIndex = classIdx
			e.NameAndTypeIdx = ntIdx
		case TagNameAndType:
			nameIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			descIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.NameIndex = nameIdx
			e.DescriptorIndex = descIdx
		case TagMethodHandle:
			kind, err := r.u1()
			if err != nil {
				return nil, err
			}
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.ReferenceKind = kind
			e.ReferenceIndex = idx
		case TagMethodType:
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.DescriptorIndex = idx
		case TagDynamic, TagInvokeDynamic:
			bsIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			ntIdx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.BootstrapIndex = bsIdx
			e.NameAndTypeIdx = ntIdx
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at index %d", tag, i)
		}
		entries[i] = e
	}
	return &ConstantPool{entries: entries}, nil
}

func (r *reader) readFields(pool *ConstantPool) ([]Field, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, count)
	for i := 0; i < int(count); i++ {
		access, err := r.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		attrs, err := r.readAttributes(pool)
		if err != nil {
			return nil, err
		}
		name, _ := pool.UTF8At(nameIdx)
		desc, _ := pool.UTF8At(descIdx)
		f := Field{AccessFlags: AccessFlags(access), Name: name, Descriptor: desc, Attributes: attrs}
		for _, a := range attrs {
			if a.Name == "Signature" {
				f.Signature = decodeSignatureAttr(pool, a.Data)
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (r *reader) readMethods(pool *ConstantPool) ([]Method, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	methods := make([]Method, 0, count)
	for i := 0; i < int(count); i++ {
		access, err := r.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		attrs, err := r.readAttributes(pool)
		if err != nil {
			return nil, err
		}
		name, _ := pool.UTF8At(nameIdx)
		desc, _ := pool.UTF8At(descIdx)
		m := Method{AccessFlags: AccessFlags(access), Name: name, Descriptor: desc, Attributes: attrs}
		for _, a := range attrs {
			if a.Name == "Signature" {
				m.Signature = decodeSignatureAttr(pool, a.Data)
			}
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (r *reader) readAttributes(pool *ConstantPool) ([]Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, count)
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		data, err := r.bytesN(int(length))
		if err != nil {
			return nil, err
		}
		name, _ := pool.UTF8At(nameIdx)
		attrs = append(attrs, Attribute{Name: name, Data: append([]byte(nil), data...)})
	}
	return attrs, nil
}

func decodeSignatureAttr(pool *ConstantPool, data []byte) string {
	if len(data) < 2 {
		return ""
	}
	idx := binary.BigEndian.Uint16(data)
	s, _ := pool.UTF8At(idx)
	return s
}

func applyClassAttributes(c *Class, pool *ConstantPool) {
	for _, a := range c.Attributes {
		switch a.Name {
		case "Signature":
			c.Signature = decodeSignatureAttr(pool, a.Data)
		case "InnerClasses":
			c.InnerClasses = decodeInnerClasses(pool, a.Data)
		case "Module":
			name, requires, exports, opens := decodeModuleAttribute(pool, a.Data)
			c.ModuleName = name
			c.ModuleRequires = requires
			c.ModuleExports = exports
			c.ModuleOpens = opens
		}
	}
}

func decodeInnerClasses(pool *ConstantPool, data []byte) []InnerClass {
	br := bytes.NewReader(data)
	var count uint16
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return nil
	}
	out := make([]InnerClass, 0, count)
	for i := 0; i < int(count); i++ {
		var innerIdx, outerIdx, nameIdx, access uint16
		if binary.Read(br, binary.BigEndian, &innerIdx) != nil {
			break
		}
		binary.Read(br, binary.BigEndian, &outerIdx)
		binary.Read(br, binary.BigEndian, &nameIdx)
		binary.Read(br, binary.BigEndian, &access)

		inner, _ := pool.ClassNameAt(innerIdx)
		var outer, simple string
		if outerIdx != 0 {
			outer, _ = pool.ClassNameAt(outerIdx)
		}
		if nameIdx != 0 {
			simple, _ = pool.UTF8At(nameIdx)
		}
		out = append(out, InnerClass{InnerName: inner, OuterName: outer, SimpleName: simple, AccessFlags: AccessFlags(access)})
	}
	return out
}

// decodeModuleAttribute decodes a Module attribute (JVMS §4.7.25): the
// module's own name plus the requires/exports/opens package lists resolve
// (§4.8) needs for JPMS visibility filtering. Only the package name is kept
// for exports/opens — a qualified "exports P to Q" is recorded the same as
// an unqualified one, since filtering only needs to know P is exported to
// *someone*, matching how workspace/scan.go's own module-info.java text
// scanner drops the "to" clause for the project's own module descriptor.
func decodeModuleAttribute(pool *ConstantPool, data []byte) (name string, requires, exports, opens []string) {
	r := &byteReader{data: data}

	moduleIdx, ok := r.u2()
	if !ok {
		return "", nil, nil, nil
	}
	name, _ = pool.ModuleNameAt(moduleIdx)
	r.u2() // module_flags
	r.u2() // module_version_index

	requiresCount, ok := r.u2()
	if !ok {
		return name, nil, nil, nil
	}
	for i := 0; i < int(requiresCount); i++ {
		idx, ok := r.u2()
		if !ok {
			return name, requires, exports, opens
		}
		r.u2() // requires_flags
		r.u2() // requires_version_index
		if n, ok := pool.ModuleNameAt(idx); ok {
			requires = append(requires, n)
		}
	}

	exportsCount, ok := r.u2()
	if !ok {
		return name, requires, nil, nil
	}
	for i := 0; i < int(exportsCount); i++ {
		idx, ok := r.u2()
		if !ok {
			return name, requires, exports, opens
		}
		r.u2() // exports_flags
		toCount, ok := r.u2()
		if !ok {
			return name, requires, exports, opens
		}
		for j := 0; j < int(toCount); j++ {
			r.u2() // exports_to_index, target module — not tracked
		}
		if n, ok := pool.PackageNameAt(idx); ok {
			exports = append(exports, n)
		}
	}

	opensCount, ok := r.u2()
	if !ok {
		return name, requires, exports, nil
	}
	for i := 0; i < int(opensCount); i++ {
		idx, ok := r.u2()
		if !ok {
			return name, requires, exports, opens
		}
		r.u2() // opens_flags
		toCount, ok := r.u2()
		if !ok {
			return name, requires, exports, opens
		}
		for j := 0; j < int(toCount); j++ {
			r.u2() // opens_to_index, target module — not tracked
		}
		if n, ok := pool.PackageNameAt(idx); ok {
			opens = append(opens, n)
		}
	}

	return name, requires, exports, opens
}

// byteReader is a minimal big-endian u2 cursor over an attribute's raw
// bytes, used where binary.Read's reflection overhead isn't worth paying
// for a tight decode loop like decodeModuleAttribute's.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) u2() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, true
}

func decodeFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func decodeFloat64(bits uint64) float64 {
	return math.Float64frombits(bits)
}
