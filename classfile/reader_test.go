package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMinimalClass constructs a minimal well-formed classfile with no
// fields, methods or interfaces, extending java/lang/Object, by hand. This
// exercises the reader's constant-pool and header parsing without requiring
// a real javac-produced fixture on disk.
func buildMinimalClass(t *testing.T, thisName, superName string) []byte {
	t.Helper()
	var buf bytes.Buffer

	binary.Write(&buf, binary.BigEndian, uint32(magic))
	binary.Write(&buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(&buf, binary.BigEndian, uint16(61)) // major (Java 17)

	// Constant pool: #1 UTF8 thisName, #2 Class #1, #3 UTF8 superName, #4 Class #3
	binary.Write(&buf, binary.BigEndian, uint16(5)) // count = highest index + 1

	writeUTF8 := func(s string) {
		buf.WriteByte(byte(TagUTF8))
		binary.Write(&buf, binary.BigEndian, uint16(len(s)))
		buf.WriteString(s)
	}
	writeClass := func(nameIdx uint16) {
		buf.WriteByte(byte(TagClass))
		binary.Write(&buf, binary.BigEndian, nameIdx)
	}

	writeUTF8(thisName)  // #1
	writeClass(1)        // #2
	writeUTF8(superName) // #3
	writeClass(3)        // #4

	binary.Write(&buf, binary.BigEndian, uint16(AccPublic|AccSuper)) // access_flags
	binary.Write(&buf, binary.BigEndian, uint16(2))                  // this_class
	binary.Write(&buf, binary.BigEndian, uint16(4))                  // super_class
	binary.Write(&buf, binary.BigEndian, uint16(0))                  // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0))                  // fields_count
	binary.Write(&buf, binary.BigEndian, uint16(0))                  // methods_count
	binary.Write(&buf, binary.BigEndian, uint16(0))                  // attributes_count

	return buf.Bytes()
}

func TestParseMinimalClass(t *testing.T) {
	raw := buildMinimalClass(t, "com/example/Widget", "java/lang/Object")
	c, err := Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "com/example/Widget", c.ThisClass)
	require.Equal(t, "java/lang/Object", c.SuperClass)
	require.True(t, c.AccessFlags.Has(AccPublic))
	require.Empty(t, c.Fields)
	require.Empty(t, c.Methods)
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0})
	require.Error(t, err)
}

func TestParseTruncatedFileFailsCleanly(t *testing.T) {
	raw := buildMinimalClass(t, "com/example/Widget", "java/lang/Object")
	_, err := Parse(raw[:len(raw)-10])
	require.Error(t, err)
}

func TestDecodeModifiedUTF8NUL(t *testing.T) {
	// modified UTF-8 NUL is 0xC0 0x80
	got := decodeModifiedUTF8([]byte{'a', 0xC0, 0x80, 'b'})
	require.Equal(t, "a\x00b", got)
}

func TestDecodeModifiedUTF8Plain(t *testing.T) {
	require.Equal(t, "hello", decodeModifiedUTF8([]byte("hello")))
}

// buildModuleInfoClass hand-builds a module-info.class with a Module
// attribute (JVMS §4.7.25) declaring requires/exports/opens, exercising
// decodeModuleAttribute the same way buildMinimalClass exercises the header
// and constant-pool parsing.
func buildModuleInfoClass(t *testing.T, moduleName string, requires, exports, opens []string) []byte {
	t.Helper()
	var pool bytes.Buffer
	next := uint16(1)

	writeUTF8 := func(s string) uint16 {
		pool.WriteByte(byte(TagUTF8))
		binary.Write(&pool, binary.BigEndian, uint16(len(s)))
		pool.WriteString(s)
		idx := next
		next++
		return idx
	}
	writeModuleConst := func(nameIdx uint16) uint16 {
		pool.WriteByte(byte(TagModule))
		binary.Write(&pool, binary.BigEndian, nameIdx)
		idx := next
		next++
		return idx
	}
	writePackageConst := func(nameIdx uint16) uint16 {
		pool.WriteByte(byte(TagPackage))
		binary.Write(&pool, binary.BigEndian, nameIdx)
		idx := next
		next++
		return idx
	}

	thisClassNameIdx := writeUTF8("module-info")
	thisClassIdx := func() uint16 {
		pool.WriteByte(byte(TagClass))
		binary.Write(&pool, binary.BigEndian, thisClassNameIdx)
		idx := next
		next++
		return idx
	}()
	ownModuleConstIdx := writeModuleConst(writeUTF8(moduleName))
	moduleAttrNameIdx := writeUTF8("Module")

	requireIdxs := make([]uint16, len(requires))
	for i, r := range requires {
		requireIdxs[i] = writeModuleConst(writeUTF8(r))
	}
	exportIdxs := make([]uint16, len(exports))
	for i, e := range exports {
		exportIdxs[i] = writePackageConst(writeUTF8(e))
	}
	openIdxs := make([]uint16, len(opens))
	for i, o := range opens {
		openIdxs[i] = writePackageConst(writeUTF8(o))
	}

	var moduleAttr bytes.Buffer
	binary.Write(&moduleAttr, binary.BigEndian, ownModuleConstIdx) // module_name_index
	binary.Write(&moduleAttr, binary.BigEndian, uint16(0))         // module_flags
	binary.Write(&moduleAttr, binary.BigEndian, uint16(0))         // module_version_index

	binary.Write(&moduleAttr, binary.BigEndian, uint16(len(requireIdxs)))
	for _, idx := range requireIdxs {
		binary.Write(&moduleAttr, binary.BigEndian, idx)
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // requires_flags
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // requires_version_index
	}

	binary.Write(&moduleAttr, binary.BigEndian, uint16(len(exportIdxs)))
	for _, idx := range exportIdxs {
		binary.Write(&moduleAttr, binary.BigEndian, idx)
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // exports_flags
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // exports_to_count
	}

	binary.Write(&moduleAttr, binary.BigEndian, uint16(len(openIdxs)))
	for _, idx := range openIdxs {
		binary.Write(&moduleAttr, binary.BigEndian, idx)
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // opens_flags
		binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // opens_to_count
	}

	binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // uses_count
	binary.Write(&moduleAttr, binary.BigEndian, uint16(0)) // provides_count

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(magic))
	binary.Write(&buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(&buf, binary.BigEndian, uint16(61)) // major

	binary.Write(&buf, binary.BigEndian, next) // constant_pool_count = highest index + 1
	buf.Write(pool.Bytes())

	binary.Write(&buf, binary.BigEndian, uint16(AccModule)) // access_flags
	binary.Write(&buf, binary.BigEndian, thisClassIdx)      // this_class
	binary.Write(&buf, binary.BigEndian, uint16(0))         // super_class
	binary.Write(&buf, binary.BigEndian, uint16(0))         // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0))         // fields_count
	binary.Write(&buf, binary.BigEndian, uint16(0))         // methods_count

	binary.Write(&buf, binary.BigEndian, uint16(1)) // attributes_count
	binary.Write(&buf, binary.BigEndian, moduleAttrNameIdx)
	binary.Write(&buf, binary.BigEndian, uint32(moduleAttr.Len()))
	buf.Write(moduleAttr.Bytes())

	return buf.Bytes()
}

func TestParseModuleInfoDecodesRequiresExportsOpens(t *testing.T) {
	raw := buildModuleInfoClass(t, "example.mod",
		[]string{"java.base"},
		[]string{"com/example/api"},
		[]string{"com/example/hidden"})
	c, err := Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "example.mod", c.ModuleName)
	require.Equal(t, []string{"java.base"}, c.ModuleRequires)
	require.Equal(t, []string{"com/example/api"}, c.ModuleExports)
	require.Equal(t, []string{"com/example/hidden"}, c.ModuleOpens)
}
