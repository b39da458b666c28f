package workspace

import "path/filepath"

// BazelBuildSystem detects a Bazel workspace (WORKSPACE or WORKSPACE.bazel
// at the root) and models it minimally: a single Module for the workspace
// root, no BUILD.bazel target-graph parsing (this repo
// has no Bazel query/BSP client dependency — see DESIGN.md).
type BazelBuildSystem struct{ opts LoadOptions }

func NewBazelBuildSystem(opts LoadOptions) *BazelBuildSystem { return &BazelBuildSystem{opts} }

func (b *BazelBuildSystem) Kind() BuildSystem { return BuildBazel }

func (b *BazelBuildSystem) Detect(root string) bool {
	return fileExists(filepath.Join(root, "WORKSPACE")) ||
		fileExists(filepath.Join(root, "WORKSPACE.bazel")) ||
		fileExists(filepath.Join(root, "MODULE.bazel"))
}

func (b *BazelBuildSystem) WatchFiles() []PathPattern {
	return []PathPattern{
		ExactFileName("WORKSPACE"),
		ExactFileName(".bazelignore"),
		Glob("**/.bsp/*.json"),
		Glob("**/*.bzl"),
	}
}

func (b *BazelBuildSystem) ParseProject(root string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{
		WorkspaceRoot: root,
		BuildSystem:   BuildBazel,
		Java:          JavaConfig{Source: 17, Target: 17},
		Modules:       []Module{{Name: filepath.Base(root), Root: root}},
		SourceRoots:   []SourceRoot{{Path: root, Kind: SourceRootMain, Origin: SourceOriginSource}},
	}
	if jm, ok := findModuleInfo(cfg.SourceRoots); ok {
		cfg.JPMSModules = append(cfg.JPMSModules, *jm)
	}
	return cfg, nil
}
