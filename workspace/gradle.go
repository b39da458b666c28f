package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GradleSnapshotGlob is the watch pattern for a pre-computed Gradle project
// snapshot (produced by a Gradle Tooling API client running outside this
// repo) that a loader may hand off to instead of parsing build.gradle files
// itself. This repo only watches for one; it does not parse or consume it —
// see DESIGN.md's Open Question decision on Gradle dependency resolution.
const GradleSnapshotGlob = "**/.nova/gradle-snapshot.json"

// GradleBuildSystem detects and parses a Gradle project tree (settings.gradle[.kts]
// at the root, subprojects taken from the settings file's include(...)
// lines). Dependency resolution against Gradle's dependency graph is out of
// scope here (no Gradle Tooling API client in this repo's dependency
// surface); classpath/module-path end up empty unless a later stage installs
// them, unlike Maven, whose dependencies are looked up in the local
// repository.
type GradleBuildSystem struct{ opts LoadOptions }

func NewGradleBuildSystem(opts LoadOptions) *GradleBuildSystem { return &GradleBuildSystem{opts} }

func (g *GradleBuildSystem) Kind() BuildSystem { return BuildGradle }

func (g *GradleBuildSystem) Detect(root string) bool {
	return fileExists(filepath.Join(root, "settings.gradle")) ||
		fileExists(filepath.Join(root, "settings.gradle.kts")) ||
		fileExists(filepath.Join(root, "build.gradle")) ||
		fileExists(filepath.Join(root, "build.gradle.kts"))
}

func (g *GradleBuildSystem) WatchFiles() []PathPattern {
	return []PathPattern{
		ExactFileName("settings.gradle"),
		ExactFileName("libs.versions.toml"),
		Glob("**/gradle/*.versions.toml"),
		Glob("**/*.gradle"),
		Glob("**/gradle/wrapper/gradle-wrapper.jar"),
		ExactFileName("gradle.lockfile"),
		Glob("**/dependency-locks/**/*.lockfile"),
		Glob(GradleSnapshotGlob),
	}
}

var includeRe = regexp.MustCompile(`include\s*\(?\s*['"]:?([\w:-]+)['"]`)
var projectDirRe = regexp.MustCompile(`project\(['"]:?([\w:-]+)['"]\)\.projectDir\s*=\s*file\(['"]([^'"]+)['"]\)`)

func (g *GradleBuildSystem) ParseProject(root string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{WorkspaceRoot: root, BuildSystem: BuildGradle, Java: JavaConfig{Source: 17, Target: 17}}

	settings := readFirst(root, "settings.gradle", "settings.gradle.kts")
	projectDirOverrides := map[string]string{}
	includes := []string{":"}
	if settings != "" {
		for _, inc := range includeRe.FindAllStringSubmatch(settings, -1) {
			includes = append(includes, ":"+inc[1])
		}
		for _, pd := range projectDirRe.FindAllStringSubmatch(settings, -1) {
			projectDirOverrides[":"+pd[1]] = filepath.Join(root, pd[2])
		}
	}

	for _, path := range includes {
		dir := root
		if path != ":" {
			if override, ok := projectDirOverrides[path]; ok {
				dir = override
			} else {
				dir = filepath.Join(root, filepath.FromSlash(path[1:]))
			}
		}
		if path != ":" && !dirExists(dir) {
			continue
		}
		cfg.Modules = append(cfg.Modules, Module{Name: strings.TrimPrefix(path, ":"), Root: dir})
		cfg.SourceRoots = append(cfg.SourceRoots, conventionalSourceRoots(dir)...)
		cfg.OutputDirs = append(cfg.OutputDirs, []OutputDir{
			{Path: filepath.Join(dir, "build", "classes", "java", "main"), Kind: OutputDirMain},
			{Path: filepath.Join(dir, "build", "classes", "java", "test"), Kind: OutputDirTest},
		}...)
	}

	if jm, ok := findModuleInfo(cfg.SourceRoots); ok {
		cfg.JPMSModules = append(cfg.JPMSModules, *jm)
	}
	return cfg, nil
}

func readFirst(root string, names ...string) string {
	for _, n := range names {
		if b, err := os.ReadFile(filepath.Join(root, n)); err == nil {
			return string(b)
		}
	}
	return ""
}
