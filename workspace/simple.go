package workspace

import "path/filepath"

// SimpleBuildSystem is the fallback backend: no build file at all, just a
// directory of .java sources. It always detects (any directory qualifies),
// so it must be tried last among backends().
type SimpleBuildSystem struct{ opts LoadOptions }

func NewSimpleBuildSystem(opts LoadOptions) *SimpleBuildSystem { return &SimpleBuildSystem{opts} }

func (s *SimpleBuildSystem) Kind() BuildSystem { return BuildSimple }

func (s *SimpleBuildSystem) Detect(root string) bool { return hasJavaSources(root) }

// WatchFiles lists every marker that would indicate the workspace has grown
// a real build system underneath it, so a reload can upgrade away from
// Simple without a restart.
func (s *SimpleBuildSystem) WatchFiles() []PathPattern {
	return []PathPattern{
		ExactFileName("module-info.java"),
		ExactFileName("pom.xml"),
		ExactFileName("build.gradle"),
		Glob("**/gradle/wrapper/gradle-wrapper.jar"),
		Glob("**/*.bzl"),
	}
}

func (s *SimpleBuildSystem) ParseProject(root string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{
		WorkspaceRoot: root,
		BuildSystem:   BuildSimple,
		Java:          JavaConfig{Source: 17, Target: 17},
		Modules: []Module{
			{Name: filepath.Base(root), Root: root},
		},
		SourceRoots: []SourceRoot{{Path: root, Kind: SourceRootMain, Origin: SourceOriginSource}},
	}
	if jm, ok := findModuleInfo(cfg.SourceRoots); ok {
		cfg.JPMSModules = append(cfg.JPMSModules, *jm)
	}
	return cfg, nil
}
