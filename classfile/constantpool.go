// Package classfile parses JVM .class files far enough to drive Nova's
// classpath indexer and resolver: the constant pool, access flags, and the
// attributes Nova's type system needs (Signature, InnerClasses and Module are
// decoded; every other attribute is kept as raw bytes, and Code bodies are
// never decoded, since Nova analyzes only declaration shape, not bytecode).
//
// Constant-pool tag values and the struct shape of a parsed class are
// grounded on artipop-jacobin's src/classloader/classloader.go (a real,
// working classfile parser retained as reference material even though it
// could not serve as this repo's teacher).
package classfile

// Tag identifies a constant pool entry's kind (JVMS §4.4).
type Tag byte

const (
	TagUTF8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// ConstantPoolEntry is one slot of the constant pool. Long and Double entries
// occupy two slots per JVMS §4.4.5; the second slot is left as a zero-value
// placeholder so indices remain 1-based and directly usable.
type ConstantPoolEntry struct {
	Tag Tag

	// UTF8 holds the decoded string for TagUTF8 entries.
	UTF8 string

	// Int/Long/Float/Double hold literal entries.
	Int    int32
	Long   int64
	Float  float32
	Double float64

	// NameIndex/ClassIndex/etc. hold 1-based indices into the pool for
	// reference-kind entries (Class, String, Fieldref, Methodref,
	// InterfaceMethodref, NameAndType, MethodHandle, MethodType, Dynamic,
	// InvokeDynamic, Module, Package). Unused fields for a given Tag are
	// zero.
	NameIndex       uint16
	ClassIndex      uint16
	StringIndex     uint16
	DescriptorIndex uint16
	NameAndTypeIdx  uint16
	ReferenceKind   uint8
	ReferenceIndex  uint16
	BootstrapIndex  uint16
}

// ConstantPool is a 1-indexed view over parsed entries (index 0 is unused,
// matching JVMS's constant_pool_count convention).
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// Get returns the entry at idx, or the zero entry if idx is out of range or
// lands on the reserved second slot of a Long/Double.
func (cp *ConstantPool) Get(idx uint16) (ConstantPoolEntry, bool) {
	if int(idx) <= 0 || int(idx) >= len(cp.entries) {
		return ConstantPoolEntry{}, false
	}
	return cp.entries[idx], true
}

// UTF8At resolves a UTF8 constant, decoding modified UTF-8 (JVMS §4.4.7) into
// a standard Go string.
func (cp *ConstantPool) UTF8At(idx uint16) (string, bool) {
	e, ok := cp.Get(idx)
	if !ok || e.Tag != TagUTF8 {
		return "", false
	}
	return e.UTF8, true
}

// ClassNameAt resolves a Class entry to its internal-form binary name, e.g.
// "java/lang/String".
func (cp *ConstantPool) ClassNameAt(idx uint16) (string, bool) {
	e, ok := cp.Get(idx)
	if !ok || e.Tag != TagClass {
		return "", false
	}
	return cp.UTF8At(e.NameIndex)
}

// ModuleNameAt resolves a Module entry (JVMS §4.4.11) to its dotted module
// name, e.g. "example.mod".
func (cp *ConstantPool) ModuleNameAt(idx uint16) (string, bool) {
	e, ok := cp.Get(idx)
	if !ok || e.Tag != TagModule {
		return "", false
	}
	return cp.UTF8At(e.NameIndex)
}

// PackageNameAt resolves a Package entry (JVMS §4.4.12) to its internal-form
// package name, e.g. "com/example/api".
func (cp *ConstantPool) PackageNameAt(idx uint16) (string, bool) {
	e, ok := cp.Get(idx)
	if !ok || e.Tag != TagPackage {
		return "", false
	}
	return cp.UTF8At(e.NameIndex)
}

// NameAndTypeAt resolves a NameAndType entry to (name, descriptor).
func (cp *ConstantPool) NameAndTypeAt(idx uint16) (name, descriptor string, ok bool) {
	e, found := cp.Get(idx)
	if !found || e.Tag != TagNameAndType {
		return "", "", false
	}
	name, ok1 := cp.UTF8At(e.NameIndex)
	descriptor, ok2 := cp.UTF8At(e.DescriptorIndex)
	return name, descriptor, ok1 && ok2
}

// Len reports the constant_pool_count (including the unused slot 0).
func (cp *ConstantPool) Len() int { return len(cp.entries) }
