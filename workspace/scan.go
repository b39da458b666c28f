package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// hasJavaSources reports whether dir (recursively) contains at least one
// .java file, the cheap existence check SimpleBuildSystem.Detect uses before
// claiming a directory.
func hasJavaSources(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".java") {
			found = true
		}
		return nil
	})
	return found
}

// conventionalSourceRoots returns the Maven/Gradle-conventional src/main
// and src/test trees under moduleRoot, falling back to moduleRoot itself
// (Simple's behavior) when neither exists.
func conventionalSourceRoots(moduleRoot string) []SourceRoot {
	var out []SourceRoot
	main := filepath.Join(moduleRoot, "src", "main", "java")
	test := filepath.Join(moduleRoot, "src", "test", "java")
	if dirExists(main) {
		out = append(out, SourceRoot{Path: main, Kind: SourceRootMain, Origin: SourceOriginSource})
	}
	if dirExists(test) {
		out = append(out, SourceRoot{Path: test, Kind: SourceRootTest, Origin: SourceOriginSource})
	}
	if len(out) == 0 {
		out = append(out, SourceRoot{Path: moduleRoot, Kind: SourceRootMain, Origin: SourceOriginSource})
	}
	return out
}

func conventionalOutputDirs(moduleRoot string) []OutputDir {
	return []OutputDir{
		{Path: filepath.Join(moduleRoot, "target", "classes"), Kind: OutputDirMain},
		{Path: filepath.Join(moduleRoot, "target", "test-classes"), Kind: OutputDirTest},
	}
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

var moduleDeclRe = regexp.MustCompile(`(?s)module\s+([\w.]+)\s*\{(.*?)\}`)
var requiresRe = regexp.MustCompile(`requires\s+(?:(?:transitive|static)\s+)*([\w.]+)\s*;`)
var exportsRe = regexp.MustCompile(`exports\s+([\w.]+)(?:\s+to\s+[^;]+)?\s*;`)
var opensRe = regexp.MustCompile(`opens\s+([\w.]+)(?:\s+to\s+[^;]+)?\s*;`)

// findModuleInfo scans sourceRoots for a module-info.java and parses its
// requires/exports/opens clauses with a regex scanner rather than a full
// parser — module-info.java has no expressions to speak of, so this covers
// every descriptor spec §4.8's JPMS support needs to resolve against.
func findModuleInfo(sourceRoots []SourceRoot) (*JPMSModule, bool) {
	for _, sr := range sourceRoots {
		path := filepath.Join(sr.Path, "module-info.java")
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		m := moduleDeclRe.FindSubmatch(b)
		if m == nil {
			continue
		}
		name := string(m[1])
		body := string(m[2])
		jm := &JPMSModule{Name: name}
		for _, r := range requiresRe.FindAllStringSubmatch(body, -1) {
			jm.Requires = append(jm.Requires, r[1])
		}
		for _, e := range exportsRe.FindAllStringSubmatch(body, -1) {
			jm.Exports = append(jm.Exports, e[1])
		}
		for _, o := range opensRe.FindAllStringSubmatch(body, -1) {
			jm.Opens = append(jm.Opens, o[1])
		}
		return jm, true
	}
	return nil, false
}
