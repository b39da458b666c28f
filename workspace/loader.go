package workspace

import "fmt"

// Loader resolves a workspace root to a ProjectConfig by trying each
// BuildSystemBackend in priority order, and supports cheap reload checks via
// Signature so a caller can skip re-parsing when nothing watched changed —
// spec §4.13's "compute a workspace signature... on signature equality,
// reuse the prior jdk_index and classpath_index". The actual Arc-style reuse
// of the derived jdk/classpath indexes happens one layer up, in whatever
// installs a Loader's output as a database input: that layer already gets
// value-based early cutoff for free by comparing ProjectConfig values before
// bumping a revision, so Loader itself only needs to report whether the
// cheaper filesystem signature changed at all.
type Loader struct {
	opts LoadOptions
}

func NewLoader(opts LoadOptions) *Loader {
	return &Loader{opts: opts}
}

// Load detects the build system owning root and parses it.
func (l *Loader) Load(root string) (*ProjectConfig, error) {
	b := l.detect(root)
	cfg, err := b.ParseProject(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: parsing %s project at %s: %w", b.Kind(), root, err)
	}
	return cfg, nil
}

// WatchFiles reports the patterns a caller's file watcher should subscribe
// to for root, per the build system that owns it.
func (l *Loader) WatchFiles(root string) []PathPattern {
	return l.detect(root).WatchFiles()
}

// Signature computes a fingerprint over root's watched build files from each
// file's path, mtime and size (not its content). An equal Signature means no
// watched build file was added, removed, resized or touched, so a caller may
// skip the second Load.
func (l *Loader) Signature(root string) (string, error) {
	return computeSignature(root, l.WatchFiles(root))
}

// Reload re-parses root only if its signature has changed since prevSig,
// returning the previous config (unchanged) and changed=false when it has not.
func (l *Loader) Reload(root string, prevSig string, prevCfg *ProjectConfig) (cfg *ProjectConfig, sig string, changed bool, err error) {
	sig, err = l.Signature(root)
	if err != nil {
		return nil, "", false, err
	}
	if sig == prevSig && prevCfg != nil {
		return prevCfg, sig, false, nil
	}
	cfg, err = l.Load(root)
	if err != nil {
		return nil, sig, false, err
	}
	return cfg, sig, true, nil
}

func (l *Loader) detect(root string) BuildSystemBackend {
	for _, b := range backends(l.opts) {
		if b.Detect(root) {
			return b
		}
	}
	return NewSimpleBuildSystem(l.opts)
}
