// Package classpath implements Nova's classpath indexer (spec §4.3): an
// ordered list of classpath entries (jars and exploded directories), each
// resolved to a binary-name -> classfile-location table, with multi-release
// jar overlay resolution and automatic-module-name detection.
package classpath

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"nova/classfile"
	"nova/internal/logging"
)

// EntryKind distinguishes a jar file from an exploded directory classpath
// entry; both are indexed the same way once their class listing is known.
type EntryKind int

const (
	EntryJar EntryKind = iota
	EntryDir
)

// Entry is one ordered classpath element.
type Entry struct {
	Kind EntryKind
	Path string

	// Fingerprint is a content hash (sha256 of the jar's bytes, or a
	// recursive mtime+size digest for a directory) used for cache keying and
	// determinism checks (spec's "classpath determinism" property).
	Fingerprint string

	// ModuleName is the automatic or explicit module name, empty for an
	// unnamed-module (classpath, not module-path) entry.
	ModuleName string
	Automatic  bool

	// ModuleRequires/ModuleExports/ModuleOpens are populated only for an
	// entry with a real module-info.class (Automatic is false); an
	// automatic module exports every package by JPMS convention (spec
	// §4.8), so these stay empty for one and Index.visibleTo treats
	// Automatic as always-visible instead of consulting them.
	ModuleRequires []string
	ModuleExports  []string
	ModuleOpens    []string

	classes map[string][]classLocation
}

type classLocation struct {
	// For jars, MemberName is the zip entry path; for dirs, it's the
	// relative file path. Both are resolved lazily through Class().
	MemberName string `json:"member_name"`
	Release    int    `json:"release"` // 0 = base, else a specific --release override for multi-release jars
}

// Lookup resolves a binary name to a classfile location within this entry,
// preferring the highest release <= targetRelease (multi-release overlay,
// spec §4.3): classes holds every release variant ever seen for a binary
// name, and the eligible one nearest targetRelease (descending K wins) is
// picked at lookup time rather than baked in at scan time, so the same
// scanned Entry serves every targetRelease correctly.
func (e *Entry) Lookup(binaryName string, targetRelease int) (classLocation, bool) {
	locs, ok := e.classes[binaryName]
	if !ok {
		return classLocation{}, false
	}
	var best classLocation
	found := false
	for _, loc := range locs {
		if loc.Release > targetRelease {
			continue
		}
		if !found || loc.Release > best.Release {
			best = loc
			found = true
		}
	}
	return best, found
}

// Class reads and parses the classfile at loc from e.
func (e *Entry) Class(loc classLocation) (*classfile.Class, error) {
	switch e.Kind {
	case EntryDir:
		b, err := os.ReadFile(path.Join(e.Path, loc.MemberName))
		if err != nil {
			return nil, err
		}
		return classfile.Parse(b)
	case EntryJar:
		zr, err := zip.OpenReader(e.Path)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		for _, f := range zr.File {
			if f.Name == loc.MemberName {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				b, err := io.ReadAll(rc)
				if err != nil {
					return nil, err
				}
				return classfile.Parse(b)
			}
		}
		return nil, fmt.Errorf("classpath: member %s not found in %s", loc.MemberName, e.Path)
	}
	return nil, fmt.Errorf("classpath: unknown entry kind")
}

// Index is the resolved view over an ordered list of classpath entries: the
// first entry (in classpath order) that defines a binary name wins, matching
// javac's classpath shadowing semantics.
type Index struct {
	Entries       []*Entry
	TargetRelease int

	// RequiredModules is the set of module names the consuming project's
	// own named module requires (its module-info.java's "requires"
	// clauses), used by visibleTo to enforce spec §4.8's JPMS export/open
	// enforcement. Nil means the project has no module-info.java of its
	// own (the classic unnamed-module case), so every entry stays visible
	// regardless of its module metadata — exactly today's pre-JPMS
	// behavior.
	RequiredModules map[string]bool
}

// WithRequiredModules returns a shallow copy of idx scoped to a consumer
// whose own module requires exactly the named modules. Passing nil disables
// JPMS filtering entirely, matching an unnamed-module project's classic
// classpath semantics; an empty non-nil map keeps filtering on, so every
// entry of a named, non-automatic module is hidden.
func (idx *Index) WithRequiredModules(requires map[string]bool) *Index {
	cp := *idx
	cp.RequiredModules = requires
	return &cp
}

// visibleTo reports whether binaryName's declaring entry is visible under
// idx.RequiredModules (spec §4.8): "in a named module, classpath types are
// visible only if their originating module is on the module path and their
// package is exported to (or opened to) the current module. Automatic
// modules export all packages."
func (idx *Index) visibleTo(e *Entry, binaryName string) bool {
	if idx.RequiredModules == nil {
		return true
	}
	if e.ModuleName == "" || e.Automatic {
		return true
	}
	if !idx.RequiredModules[e.ModuleName] {
		return false
	}
	pkg := binaryName
	if i := strings.LastIndexByte(binaryName, '/'); i >= 0 {
		pkg = binaryName[:i]
	} else {
		pkg = ""
	}
	for _, p := range e.ModuleExports {
		if p == pkg {
			return true
		}
	}
	for _, p := range e.ModuleOpens {
		if p == pkg {
			return true
		}
	}
	return false
}

// Build scans every entry in paths (in order) concurrently, one errgroup
// goroutine per entry, then assembles the ordered Index. Scanning is embarrassingly
// parallel across entries; the winner-takes-binary-name resolution below
// stays strictly ordered, so parallelism here never changes the result,
// only the wall-clock cost of producing it.
func Build(ctx context.Context, paths []string, targetRelease int, cache *Cache) (*Index, error) {
	log := logging.Get(logging.CategoryClasspath)
	timer := logging.StartTimer(logging.CategoryClasspath, "Build")
	defer timer.Stop()

	entries := make([]*Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			e, err := scanEntry(gctx, p, targetRelease, cache)
			if err != nil {
				return fmt.Errorf("classpath: scanning %s: %w", p, err)
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("classpath built: %d entries, target release %d", len(entries), targetRelease)
	return &Index{Entries: entries, TargetRelease: targetRelease}, nil
}

func scanEntry(ctx context.Context, p string, targetRelease int, cache *Cache) (*Entry, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return scanDir(p)
	}
	return scanJar(ctx, p, targetRelease, cache)
}

func scanDir(root string) (*Entry, error) {
	e := &Entry{Kind: EntryDir, Path: root, classes: make(map[string][]classLocation)}
	h := sha256.New()
	var names []string

	err := eachFile(root, func(rel string, modTime int64, size int64) {
		fmt.Fprintf(h, "%s:%d:%d\n", rel, modTime, size)
		if strings.HasSuffix(rel, ".class") {
			names = append(names, rel)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	for _, rel := range names {
		binaryName := strings.TrimSuffix(rel, ".class")
		release, overlay := multiReleasePath(binaryName)
		e.classes[overlay] = append(e.classes[overlay], classLocation{MemberName: rel, Release: release})
	}
	e.Fingerprint = hex.EncodeToString(h.Sum(nil))
	return e, nil
}

func scanJar(ctx context.Context, jarPath string, targetRelease int, cache *Cache) (*Entry, error) {
	fp, err := fingerprintFile(jarPath)
	if err != nil {
		return nil, err
	}

	e := &Entry{Kind: EntryJar, Path: jarPath, Fingerprint: fp, classes: make(map[string][]classLocation)}

	if cache != nil {
		if cached, ok := cache.Lookup(ctx, fp, targetRelease); ok {
			e.classes = cached.classes
			e.ModuleName = cached.ModuleName
			e.Automatic = cached.Automatic
			e.ModuleRequires = cached.ModuleRequires
			e.ModuleExports = cached.ModuleExports
			e.ModuleOpens = cached.ModuleOpens
			return e, nil
		}
	}

	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	hasModuleInfo := false
	for _, f := range zr.File {
		if f.Name == "module-info.class" {
			hasModuleInfo = true
			continue
		}
		if !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		_, release, overlay := classifyMember(f.Name)
		e.classes[overlay] = append(e.classes[overlay], classLocation{MemberName: f.Name, Release: release})
	}

	if hasModuleInfo {
		e.ModuleName, e.ModuleRequires, e.ModuleExports, e.ModuleOpens = readModuleInfo(zr, jarPath)
	} else {
		e.ModuleName, e.Automatic = AutomaticModuleName(jarPath)
	}

	if cache != nil {
		cache.Store(ctx, fp, targetRelease, e)
	}
	return e, nil
}

// classifyMember splits a multi-release jar member path into its binary
// name, the release it applies to (0 for the base tree), and the binary name
// used as the overlay map key.
func classifyMember(zipPath string) (binaryName string, release int, overlayKey string) {
	const prefix = "META-INF/versions/"
	if strings.HasPrefix(zipPath, prefix) {
		rest := zipPath[len(prefix):]
		slash := strings.IndexByte(rest, '/')
		if slash > 0 {
			if n, err := parseRelease(rest[:slash]); err == nil {
				name := strings.TrimSuffix(rest[slash+1:], ".class")
				return name, n, name
			}
		}
	}
	name := strings.TrimSuffix(zipPath, ".class")
	return name, 0, name
}

func multiReleasePath(binaryName string) (release int, overlayKey string) {
	return 0, binaryName
}

func parseRelease(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

// readModuleInfo parses jarPath's module-info.class and returns its module
// name plus the requires/exports/opens package lists (spec §4.8's JPMS
// visibility filtering).
func readModuleInfo(zr *zip.ReadCloser, jarPath string) (name string, requires, exports, opens []string) {
	for _, f := range zr.File {
		if f.Name != "module-info.class" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, nil, nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return "", nil, nil, nil
		}
		c, err := classfile.Parse(b)
		if err != nil {
			return "", nil, nil, nil
		}
		return c.ModuleName, c.ModuleRequires, c.ModuleExports, c.ModuleOpens
	}
	return "", nil, nil, nil
}

func eachFile(root string, fn func(rel string, modTime int64, size int64)) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, d := range entries {
		full := path.Join(root, d.Name())
		if d.IsDir() {
			if err := eachFile(full, func(rel string, m, s int64) {
				fn(path.Join(d.Name(), rel), m, s)
			}); err != nil {
				return err
			}
			continue
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fn(d.Name(), info.ModTime().Unix(), info.Size())
	}
	return nil
}

func fingerprintFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Resolve looks up a binary name against the ordered index, honoring
// first-entry-wins classpath shadowing and, when idx.RequiredModules is
// set, JPMS export/open visibility (spec §4.8): an entry whose module isn't
// required or doesn't export/open binaryName's package is skipped as if it
// weren't on the classpath at all, the same way a real javac invocation
// would fail to see it.
func (idx *Index) Resolve(binaryName string) (*Entry, classLocation, bool) {
	for _, e := range idx.Entries {
		if loc, ok := e.Lookup(binaryName, idx.TargetRelease); ok {
			if !idx.visibleTo(e, binaryName) {
				continue
			}
			return e, loc, true
		}
	}
	return nil, classLocation{}, false
}
