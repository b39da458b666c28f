package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSimpleDetectsBareJavaDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Main.java"), "class Main {}")

	l := NewLoader(LoadOptions{})
	cfg, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildSystem != BuildSimple {
		t.Fatalf("expected BuildSimple, got %v", cfg.BuildSystem)
	}
	if len(cfg.Modules) != 1 || cfg.Modules[0].Root != root {
		t.Fatalf("unexpected modules: %+v", cfg.Modules)
	}
}

func TestSimpleWatchFilesContainsUpgradeMarkers(t *testing.T) {
	s := NewSimpleBuildSystem(LoadOptions{})
	if !findPattern(s.WatchFiles(), "pom.xml") {
		t.Fatal("expected pom.xml watch pattern")
	}
	if !findPattern(s.WatchFiles(), "build.gradle") {
		t.Fatal("expected build.gradle watch pattern")
	}
}

func TestMavenDetectsPomAndReadsCompilerRelease(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <properties>
    <maven.compiler.release>21</maven.compiler.release>
  </properties>
</project>`)
	writeFile(t, filepath.Join(root, "src", "main", "java", "Main.java"), "class Main {}")

	l := NewLoader(LoadOptions{})
	cfg, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildSystem != BuildMaven {
		t.Fatalf("expected BuildMaven, got %v", cfg.BuildSystem)
	}
	if cfg.Java.LanguageLevel() != 21 {
		t.Fatalf("expected language level 21, got %d", cfg.Java.LanguageLevel())
	}
}

func TestMavenReactorDiscoversSubmodules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <modules>
    <module>core</module>
    <module>api</module>
  </modules>
</project>`)
	writeFile(t, filepath.Join(root, "core", "pom.xml"), `<project></project>`)
	writeFile(t, filepath.Join(root, "api", "pom.xml"), `<project></project>`)

	b := NewMavenBuildSystem(LoadOptions{})
	cfg, err := b.ParseProject(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Modules) != 3 {
		t.Fatalf("expected 3 modules (root + core + api), got %d: %+v", len(cfg.Modules), cfg.Modules)
	}
}

func TestMavenDependencyResolvesAgainstLocalRepo(t *testing.T) {
	root := t.TempDir()
	repo := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>widgets</artifactId>
      <version>1.2.3</version>
    </dependency>
  </dependencies>
</project>`)
	jar := filepath.Join(repo, "com", "example", "widgets", "1.2.3", "widgets-1.2.3.jar")
	writeFile(t, jar, "fake-jar-bytes")

	b := NewMavenBuildSystem(LoadOptions{MavenRepo: repo})
	cfg, err := b.ParseProject(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Dependencies) != 1 || cfg.Dependencies[0] != "com.example:widgets:1.2.3" {
		t.Fatalf("unexpected dependencies: %+v", cfg.Dependencies)
	}
	if len(cfg.Classpath) != 1 || cfg.Classpath[0].Path != jar {
		t.Fatalf("expected resolved classpath entry %s, got %+v", jar, cfg.Classpath)
	}
}

func TestGradleDetectsSettingsAndSubprojects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "settings.gradle"), `
rootProject.name = "demo"
include ":core"
include ":api"
`)
	writeFile(t, filepath.Join(root, "core", "build.gradle"), "")
	writeFile(t, filepath.Join(root, "api", "build.gradle"), "")

	l := NewLoader(LoadOptions{})
	cfg, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildSystem != BuildGradle {
		t.Fatalf("expected BuildGradle, got %v", cfg.BuildSystem)
	}
	if len(cfg.Modules) != 3 {
		t.Fatalf("expected 3 modules (root + core + api), got %d: %+v", len(cfg.Modules), cfg.Modules)
	}
}

func TestGradleWatchFilesIncludesSnapshotGlob(t *testing.T) {
	g := NewGradleBuildSystem(LoadOptions{})
	if !findPattern(g.WatchFiles(), "gradle-snapshot.json") {
		t.Fatal("expected gradle snapshot glob among watch patterns")
	}
}

func TestBazelDetectsWorkspaceFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "WORKSPACE"), "")
	writeFile(t, filepath.Join(root, "Main.java"), "class Main {}")

	l := NewLoader(LoadOptions{})
	cfg, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildSystem != BuildBazel {
		t.Fatalf("expected BuildBazel, got %v", cfg.BuildSystem)
	}
}

func TestMavenPriorityOverSimpleWhenBothPresent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project></project>`)
	writeFile(t, filepath.Join(root, "Main.java"), "class Main {}")

	l := NewLoader(LoadOptions{})
	cfg, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildSystem != BuildMaven {
		t.Fatalf("expected Maven to take priority over Simple, got %v", cfg.BuildSystem)
	}
}

func TestFindModuleInfoParsesRequiresExportsOpens(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "module-info.java"), `
module com.example.demo {
    requires java.base;
    requires transitive com.example.api;
    exports com.example.demo.api;
    opens com.example.demo.internal to com.example.tooling;
}
`)
	sourceRoots := []SourceRoot{{Path: root, Kind: SourceRootMain, Origin: SourceOriginSource}}
	jm, ok := findModuleInfo(sourceRoots)
	if !ok {
		t.Fatal("expected module-info.java to be found")
	}
	if jm.Name != "com.example.demo" {
		t.Fatalf("unexpected module name: %s", jm.Name)
	}
	if len(jm.Requires) != 2 || len(jm.Exports) != 1 || len(jm.Opens) != 1 {
		t.Fatalf("unexpected clauses: %+v", jm)
	}
}

func TestSignatureStableAcrossRepeatedLoadsUntilFileChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project></project>`)

	l := NewLoader(LoadOptions{})
	sig1, err := l.Signature(root)
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := l.Signature(root)
	if err != nil {
		t.Fatal(err)
	}
	if sig1 != sig2 {
		t.Fatalf("expected stable signature across repeated calls, got %s vs %s", sig1, sig2)
	}

	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <modules><module>changed</module></modules>
</project>`)
	sig3, err := l.Signature(root)
	if err != nil {
		t.Fatal(err)
	}
	if sig1 == sig3 {
		t.Fatal("expected signature to change after pom.xml content changed")
	}
}

func TestReloadSkipsReparseWhenSignatureUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project></project>`)

	l := NewLoader(LoadOptions{})
	cfg, sig, err := func() (*ProjectConfig, string, error) {
		c, err := l.Load(root)
		if err != nil {
			return nil, "", err
		}
		s, err := l.Signature(root)
		return c, s, err
	}()
	if err != nil {
		t.Fatal(err)
	}

	reloaded, newSig, changed, err := l.Reload(root, sig, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("expected Reload to report no change")
	}
	if newSig != sig {
		t.Fatalf("expected stable signature, got %s vs %s", sig, newSig)
	}
	if reloaded != cfg {
		t.Fatal("expected Reload to return the same ProjectConfig pointer when nothing changed")
	}
}

func findPattern(patterns []PathPattern, needle string) bool {
	for _, p := range patterns {
		if p.FileName == needle || p.Glob == needle || filepath.Base(p.Glob) == needle {
			return true
		}
	}
	return false
}
