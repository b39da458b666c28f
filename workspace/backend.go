package workspace

import (
	"path/filepath"
	"strings"
)

// PathPattern is a watched-file pattern a backend reports via WatchFiles, so
// a file-watcher layer (external to this repo, per spec.md's Non-goals)
// knows which paths should trigger a reload. Grounded on
// original_source/.../build_system_backends.rs's watch_files_contains_*
// assertions, which exercise exactly these two pattern shapes.
type PathPattern struct {
	Glob     string // non-empty for a "**/..." style glob pattern
	FileName string // non-empty for an exact basename match
}

func ExactFileName(name string) PathPattern { return PathPattern{FileName: name} }
func Glob(pattern string) PathPattern       { return PathPattern{Glob: pattern} }

// Matches reports whether relPath (workspace-root-relative, "/"-separated)
// satisfies p.
func (p PathPattern) Matches(relPath string) bool {
	if p.FileName != "" {
		return filepath.Base(relPath) == p.FileName
	}
	g := strings.TrimPrefix(p.Glob, "**/")
	ok, _ := filepath.Match(g, filepath.Base(relPath))
	if ok {
		return true
	}
	ok, _ = filepath.Match(p.Glob, relPath)
	return ok
}

// BuildSystemBackend detects a build system at a workspace root, reports
// which files should be watched for changes, and parses the project into a
// ProjectConfig.
type BuildSystemBackend interface {
	Kind() BuildSystem
	Detect(root string) bool
	WatchFiles() []PathPattern
	ParseProject(root string) (*ProjectConfig, error)
}

// LoadOptions tunes how a backend resolves external state (a Maven local
// repository, a Gradle user home) that isn't itself part of the workspace
// tree. A zero-value LoadOptions falls back to the platform-conventional
// paths (~/.m2/repository, ~/.gradle).
type LoadOptions struct {
	MavenRepo      string
	GradleUserHome string
	TargetJavaHome string
}

// backends lists every detector in priority order: the first one whose
// Detect reports true owns the workspace. Simple is last, since it detects
// unconditionally (any directory with .java files is a valid Simple project).
func backends(opts LoadOptions) []BuildSystemBackend {
	return []BuildSystemBackend{
		NewMavenBuildSystem(opts),
		NewGradleBuildSystem(opts),
		NewBazelBuildSystem(opts),
		NewSimpleBuildSystem(opts),
	}
}
