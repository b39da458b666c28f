// Package workspace is Nova's build-system loader (spec §4.13): it walks a
// workspace root, detects which build system owns it, and produces the
// typed ProjectConfig a caller installs into db as an input. workspace never
// imports db — it is a pure producer, the same layering spec.md's "Producers
// (what the core consumes)" section describes for the workspace loader.
//
// Grounded on original_source/crates/nova-project's test suite
// (build_system_backends.rs, gradle_snapshot.rs, maven_jpms_workspace_model.rs)
// for the shape of BuildSystemBackend, PathPattern and the source-root/
// classpath/output-dir vocabulary; the crate's own implementation isn't in
// original_source, so the parsing logic itself (pom.xml/build.gradle/
// WORKSPACE scanning) is this module's own, simplified relative to those
// fixtures' full Maven-repo/Gradle-tooling-API resolution — see DESIGN.md.
package workspace

import "nova/jdk"

// BuildSystem identifies which backend produced a ProjectConfig.
type BuildSystem int

const (
	BuildSimple BuildSystem = iota
	BuildMaven
	BuildGradle
	BuildBazel
)

func (b BuildSystem) String() string {
	switch b {
	case BuildMaven:
		return "maven"
	case BuildGradle:
		return "gradle"
	case BuildBazel:
		return "bazel"
	default:
		return "simple"
	}
}

// SourceRootKind distinguishes main sources from test sources.
type SourceRootKind int

const (
	SourceRootMain SourceRootKind = iota
	SourceRootTest
)

// SourceRootOrigin distinguishes hand-written sources from generated ones
// (annotation processor output, codegen), which a caller may want to treat
// differently (e.g. exclude from "organize imports").
type SourceRootOrigin int

const (
	SourceOriginSource SourceRootOrigin = iota
	SourceOriginGenerated
)

type SourceRoot struct {
	Path   string
	Kind   SourceRootKind
	Origin SourceRootOrigin
}

// OutputDirKind distinguishes compiled main classes from compiled test
// classes, mirroring SourceRootKind.
type OutputDirKind int

const (
	OutputDirMain OutputDirKind = iota
	OutputDirTest
)

type OutputDir struct {
	Path string
	Kind OutputDirKind
}

// ClasspathEntryKind distinguishes a jar from an exploded directory, the
// same distinction classpath.EntryKind makes — kept as a separate type here
// since workspace must not import classpath (classpath is a lower layer
// wired in later by db, not by the loader itself).
type ClasspathEntryKind int

const (
	ClasspathJar ClasspathEntryKind = iota
	ClasspathDir
)

type ClasspathEntry struct {
	Kind ClasspathEntryKind
	Path string
}

// JavaConfig is the compiler-level configuration for a module: source/target
// language levels, an optional --release override, and preview features.
type JavaConfig struct {
	Source        int
	Target        int
	Release       int // 0 = unset, defer to Source/Target
	EnablePreview bool
}

func (j JavaConfig) LanguageLevel() int {
	if j.Release != 0 {
		return j.Release
	}
	if j.Target != 0 {
		return j.Target
	}
	return j.Source
}

// AnnotationProcessing configures whether generated-source output
// participates in a module's source roots.
type AnnotationProcessing struct {
	Enabled   bool
	OutputDir string
}

// Module is one compilation unit within a (possibly multi-module) project:
// Maven/Gradle subprojects each become one Module, Bazel's minimal model
// treats the whole WORKSPACE as one, and Simple always has exactly one.
type Module struct {
	Name                 string
	Root                 string
	AnnotationProcessing AnnotationProcessing
}

// JPMSModule is one named module discovered via a module-info.java descriptor.
type JPMSModule struct {
	Name     string
	Requires []string
	Exports  []string
	Opens    []string
}

// ProjectConfig is the typed input db.Database.SetProjectConfig stores
// (spec §6, "Producers"): everything a loaded workspace contributes.
type ProjectConfig struct {
	WorkspaceRoot string
	BuildSystem   BuildSystem
	Java          JavaConfig

	Modules     []Module
	JPMSModules []JPMSModule

	SourceRoots  []SourceRoot
	ModulePath   []string
	Classpath    []ClasspathEntry
	OutputDirs   []OutputDir
	Dependencies []string

	// JDKHome is the bootstrap JDK this project was configured against;
	// empty means "use whatever JAVA_HOME the embedding process resolves".
	JDKHome    string
	JDKRelease jdk.Release
}
