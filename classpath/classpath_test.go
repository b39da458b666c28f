package classpath

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nova/classfile"
)

func writeZipClass(t *testing.T, zipPath, memberPath string, classBytes []byte) {
	t.Helper()
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(memberPath)
	require.NoError(t, err)
	_, err = w.Write(classBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestAutomaticModuleName(t *testing.T) {
	name, automatic := AutomaticModuleName("/libs/guava-31.1-jre.jar")
	require.True(t, automatic)
	require.Equal(t, "guava", name)

	name, automatic = AutomaticModuleName("/libs/commons-lang3-3.12.0.jar")
	require.True(t, automatic)
	require.Equal(t, "commons.lang3", name)
}

func TestClassifyMemberBaseVsOverlay(t *testing.T) {
	name, release, key := classifyMember("com/example/Widget.class")
	require.Equal(t, "com/example/Widget", name)
	require.Equal(t, 0, release)
	require.Equal(t, "com/example/Widget", key)

	name, release, key = classifyMember("META-INF/versions/17/com/example/Widget.class")
	require.Equal(t, "com/example/Widget", name)
	require.Equal(t, 17, release)
	require.Equal(t, "com/example/Widget", key)
}

func TestBuildScansJarsInOrder(t *testing.T) {
	dir := t.TempDir()
	jarA := filepath.Join(dir, "a.jar")
	jarB := filepath.Join(dir, "b.jar")

	writeZipClass(t, jarA, "com/example/Widget.class", []byte("dummy-a"))
	writeZipClass(t, jarB, "com/example/Widget.class", []byte("dummy-b"))

	idx, err := Build(context.Background(), []string{jarA, jarB}, 17, nil)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 2)

	entry, loc, ok := idx.Resolve("com/example/Widget")
	require.True(t, ok)
	require.Equal(t, jarA, entry.Path, "first classpath entry must win on a name collision")
	require.Equal(t, "com/example/Widget.class", loc.MemberName)
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	jarPath := filepath.Join(dir, "a.jar")
	writeZipClass(t, jarPath, "com/example/Widget.class", []byte("dummy"))

	ctx := context.Background()
	idx, err := Build(ctx, []string{jarPath}, 17, cache)
	require.NoError(t, err)
	_, _, ok := idx.Resolve("com/example/Widget")
	require.True(t, ok)

	fp, err := fingerprintFile(jarPath)
	require.NoError(t, err)

	cached, ok := cache.Lookup(ctx, fp, 17)
	require.True(t, ok)
	_, ok = cached.Lookup("com/example/Widget", 17)
	require.True(t, ok)

	_, ok = cache.Lookup(ctx, fp, 8)
	require.False(t, ok, "a cache entry scanned for release 17 must not serve a release 8 lookup")
}

// buildModuleInfoClass hand-builds a module-info.class declaring
// requires/exports (JVMS §4.7.25), the same byte-by-byte approach
// classfile's own reader_test.go uses for synthetic fixtures, so this
// package can exercise end-to-end JPMS visibility without a real javac
// build.
func buildModuleInfoClass(t *testing.T, moduleName string, requires, exports []string) []byte {
	t.Helper()
	var pool bytes.Buffer
	next := uint16(1)

	writeUTF8 := func(s string) uint16 {
		pool.WriteByte(byte(classfile.TagUTF8))
		binary.Write(&pool, binary.BigEndian, uint16(len(s)))
		pool.WriteString(s)
		idx := next
		next++
		return idx
	}
	writeModuleConst := func(nameIdx uint16) uint16 {
		pool.WriteByte(byte(classfile.TagModule))
		binary.Write(&pool, binary.BigEndian, nameIdx)
		idx := next
		next++
		return idx
	}
	writePackageConst := func(nameIdx uint16) uint16 {
		pool.WriteByte(byte(classfile.TagPackage))
		binary.Write(&pool, binary.BigEndian, nameIdx)
		idx := next
		next++
		return idx
	}

	thisClassNameIdx := writeUTF8("module-info")
	pool2 := func() uint16 {
		pool.WriteByte(byte(classfile.TagClass))
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

	var attr bytes.Buffer
	binary.Write(&attr, binary.BigEndian, ownModuleConstIdx)
	binary.Write(&attr, binary.BigEndian, uint16(0)) // module_flags
	binary.Write(&attr, binary.BigEndian, uint16(0)) // module_version_index

	binary.Write(&attr, binary.BigEndian, uint16(len(requireIdxs)))
	for _, idx := range requireIdxs {
		binary.Write(&attr, binary.BigEndian, idx)
		binary.Write(&attr, binary.BigEndian, uint16(0))
		binary.Write(&attr, binary.BigEndian, uint16(0))
	}

	binary.Write(&attr, binary.BigEndian, uint16(len(exportIdxs)))
	for _, idx := range exportIdxs {
		binary.Write(&attr, binary.BigEndian, idx)
		binary.Write(&attr, binary.BigEndian, uint16(0)) // exports_flags
		binary.Write(&attr, binary.BigEndian, uint16(0)) // exports_to_count
	}

	binary.Write(&attr, binary.BigEndian, uint16(0)) // opens_count
	binary.Write(&attr, binary.BigEndian, uint16(0)) // uses_count
	binary.Write(&attr, binary.BigEndian, uint16(0)) // provides_count

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(61))

	binary.Write(&buf, binary.BigEndian, next)
	buf.Write(pool.Bytes())

	binary.Write(&buf, binary.BigEndian, uint16(classfile.AccModule))
	binary.Write(&buf, binary.BigEndian, pool2)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // super_class
	binary.Write(&buf, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0)) // fields_count
	binary.Write(&buf, binary.BigEndian, uint16(0)) // methods_count

	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, moduleAttrNameIdx)
	binary.Write(&buf, binary.BigEndian, uint32(attr.Len()))
	buf.Write(attr.Bytes())

	return buf.Bytes()
}

func TestJPMSExportEnforcementScenario(t *testing.T) {
	// Reproduces spec scenario 5: module example.mod exports com/example/api
	// but not com/example/hidden; a consumer requiring example.mod can
	// resolve Api but not Hidden.
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "example-mod.jar")

	f, err := os.Create(jarPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	moduleInfo := buildModuleInfoClass(t, "example.mod", nil, []string{"com/example/api"})
	w, err := zw.Create("module-info.class")
	require.NoError(t, err)
	_, err = w.Write(moduleInfo)
	require.NoError(t, err)

	for _, binaryName := range []string{"com/example/api/Api", "com/example/hidden/Hidden"} {
		w, err := zw.Create(binaryName + ".class")
		require.NoError(t, err)
		_, err = w.Write([]byte("dummy"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ctx := context.Background()
	idx, err := Build(ctx, []string{jarPath}, 17, nil)
	require.NoError(t, err)

	require.Equal(t, "example.mod", idx.Entries[0].ModuleName)
	require.Equal(t, []string{"com/example/api"}, idx.Entries[0].ModuleExports)

	scoped := idx.WithRequiredModules(map[string]bool{"example.mod": true})

	_, _, ok := scoped.Resolve("com/example/api/Api")
	require.True(t, ok, "an exported package must resolve for a consumer that requires this module")

	_, _, ok = scoped.Resolve("com/example/hidden/Hidden")
	require.False(t, ok, "a non-exported package must not resolve even though the class is physically present")

	// Without requiring the module at all, nothing in it is visible.
	notRequiring := idx.WithRequiredModules(map[string]bool{"other.mod": true})
	_, _, ok = notRequiring.Resolve("com/example/api/Api")
	require.False(t, ok, "a module not on the consumer's requires list must not be visible even if exported")

	// An unnamed-module project (no RequiredModules set) keeps classic,
	// unfiltered classpath behavior.
	_, _, ok = idx.Resolve("com/example/hidden/Hidden")
	require.True(t, ok, "an unscoped index performs no JPMS filtering")
}

func TestMultiReleaseOverlayRespectsTargetRelease(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "a.jar")

	f, err := os.Create(jarPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	base, err := zw.Create("com/example/Widget.class")
	require.NoError(t, err)
	_, err = base.Write([]byte("base"))
	require.NoError(t, err)

	overlay9, err := zw.Create("META-INF/versions/9/com/example/Widget.class")
	require.NoError(t, err)
	_, err = overlay9.Write([]byte("release-9"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ctx := context.Background()

	idxAt9, err := Build(ctx, []string{jarPath}, 9, nil)
	require.NoError(t, err)
	_, loc9, ok := idxAt9.Resolve("com/example/Widget")
	require.True(t, ok)
	require.Equal(t, "META-INF/versions/9/com/example/Widget.class", loc9.MemberName,
		"target release 9 must pick up the release-9 overlay")

	idxAt8, err := Build(ctx, []string{jarPath}, 8, nil)
	require.NoError(t, err)
	_, loc8, ok := idxAt8.Resolve("com/example/Widget")
	require.True(t, ok)
	require.Equal(t, "com/example/Widget.class", loc8.MemberName,
		"target release 8 must fall back to the base-tree entry, not the release-9 override")
}
