package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MavenBuildSystem detects and parses a Maven project tree (pom.xml at the
// root, optionally a reactor of nested modules named by <module> elements).
// Dependency resolution is simplified to a single-hop lookup against a
// local repository layout (groupId/artifactId/version/artifactId-version.jar):
// this repo has no Maven resolver dependency to draw a transitive graph
// from, unlike original_source's maven_jpms_workspace_model.rs fixture,
// which writes a real repo layout and expects full resolution — see
// DESIGN.md's Open Question decision.
type MavenBuildSystem struct{ opts LoadOptions }

func NewMavenBuildSystem(opts LoadOptions) *MavenBuildSystem { return &MavenBuildSystem{opts} }

func (m *MavenBuildSystem) Kind() BuildSystem { return BuildMaven }

func (m *MavenBuildSystem) Detect(root string) bool {
	return fileExists(filepath.Join(root, "pom.xml"))
}

func (m *MavenBuildSystem) WatchFiles() []PathPattern {
	return []PathPattern{
		ExactFileName("pom.xml"),
		Glob("**/.mvn/jvm.config"),
		Glob("**/.mvn/wrapper/maven-wrapper.jar"),
		ExactFileName("module-info.java"),
	}
}

var moduleElemRe = regexp.MustCompile(`<module>\s*([^<\s]+)\s*</module>`)
var dependencyElemRe = regexp.MustCompile(`(?s)<dependency>(.*?)</dependency>`)
var groupIDRe = regexp.MustCompile(`<groupId>\s*([^<\s]+)\s*</groupId>`)
var artifactIDRe = regexp.MustCompile(`<artifactId>\s*([^<\s]+)\s*</artifactId>`)
var versionRe = regexp.MustCompile(`<version>\s*([^<\s]+)\s*</version>`)
var compilerSourceRe = regexp.MustCompile(`<maven\.compiler\.source>\s*([\d.]+)\s*</maven\.compiler\.source>`)
var compilerTargetRe = regexp.MustCompile(`<maven\.compiler\.target>\s*([\d.]+)\s*</maven\.compiler\.target>`)
var compilerReleaseRe = regexp.MustCompile(`<maven\.compiler\.release>\s*([\d.]+)\s*</maven\.compiler\.release>`)

func (m *MavenBuildSystem) ParseProject(root string) (*ProjectConfig, error) {
	pomPath := filepath.Join(root, "pom.xml")
	pom, err := os.ReadFile(pomPath)
	if err != nil {
		return nil, err
	}
	text := string(pom)

	cfg := &ProjectConfig{WorkspaceRoot: root, BuildSystem: BuildMaven}
	cfg.Java = JavaConfig{Source: 17, Target: 17}
	if v := compilerSourceRe.FindStringSubmatch(text); v != nil {
		cfg.Java.Source = parseJavaVersion(v[1])
	}
	if v := compilerTargetRe.FindStringSubmatch(text); v != nil {
		cfg.Java.Target = parseJavaVersion(v[1])
	}
	if v := compilerReleaseRe.FindStringSubmatch(text); v != nil {
		cfg.Java.Release = parseJavaVersion(v[1])
	}

	moduleDirs := []string{root}
	for _, mm := range moduleElemRe.FindAllStringSubmatch(text, -1) {
		moduleDirs = append(moduleDirs, filepath.Join(root, mm[1]))
	}

	repo := m.opts.MavenRepo
	if repo == "" {
		if home, err := os.UserHomeDir(); err == nil {
			repo = filepath.Join(home, ".m2", "repository")
		}
	}

	// Each reactor module is read and its dependencies resolved against the
	// local repository independently, so a many-module reactor scans its
	// pom.xml files concurrently instead of one at a time.
	results := make([]*mavenModuleResult, len(moduleDirs))
	g := new(errgroup.Group)
	for i, dir := range moduleDirs {
		i, dir := i, dir
		g.Go(func() error {
			r, ok := scanMavenModule(dir, dir == root, repo)
			if ok {
				results[i] = r
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r == nil {
			continue
		}
		cfg.Modules = append(cfg.Modules, r.module)
		cfg.SourceRoots = append(cfg.SourceRoots, r.sourceRoots...)
		cfg.OutputDirs = append(cfg.OutputDirs, r.outputDirs...)
		cfg.Dependencies = append(cfg.Dependencies, r.dependencies...)
		cfg.Classpath = append(cfg.Classpath, r.classpath...)
	}

	if jm, ok := findModuleInfo(cfg.SourceRoots); ok {
		cfg.JPMSModules = append(cfg.JPMSModules, *jm)
		for _, cp := range cfg.Classpath {
			cfg.ModulePath = append(cfg.ModulePath, cp.Path)
		}
	}
	return cfg, nil
}

type mavenModuleResult struct {
	module       Module
	sourceRoots  []SourceRoot
	outputDirs   []OutputDir
	dependencies []string
	classpath    []ClasspathEntry
}

// scanMavenModule reads dir's own pom.xml and resolves its <dependency>
// entries against repo. isRoot skips the "does dir have its own pom.xml"
// check, since the reactor root's pom.xml was already read by the caller.
func scanMavenModule(dir string, isRoot bool, repo string) (*mavenModuleResult, bool) {
	if !isRoot && !fileExists(filepath.Join(dir, "pom.xml")) {
		return nil, false
	}
	r := &mavenModuleResult{
		module:      Module{Name: filepath.Base(dir), Root: dir},
		sourceRoots: conventionalSourceRoots(dir),
		outputDirs:  conventionalOutputDirs(dir),
	}

	childPom, err := os.ReadFile(filepath.Join(dir, "pom.xml"))
	if err != nil {
		return r, true
	}
	for _, dep := range dependencyElemRe.FindAllStringSubmatch(string(childPom), -1) {
		body := dep[1]
		g := groupIDRe.FindStringSubmatch(body)
		a := artifactIDRe.FindStringSubmatch(body)
		v := versionRe.FindStringSubmatch(body)
		if g == nil || a == nil || v == nil || repo == "" {
			continue
		}
		r.dependencies = append(r.dependencies, g[1]+":"+a[1]+":"+v[1])
		jar := filepath.Join(repo, filepath.Join(strings.Split(g[1], ".")...), a[1], v[1], a[1]+"-"+v[1]+".jar")
		if fileExists(jar) {
			r.classpath = append(r.classpath, ClasspathEntry{Kind: ClasspathJar, Path: jar})
		}
	}
	return r, true
}

func parseJavaVersion(s string) int {
	s = strings.TrimPrefix(s, "1.")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 17
	}
	return n
}
