package db

import (
	"strings"

	"nova/classpath"
	"nova/jdk"
	"nova/workspace"
)

// SetFileText installs or updates a file's source text (spec §6, "Per-file
// inputs: file_text"). Re-setting the same text is a no-op that does not
// bump the revision — the realization of §8's "Cache early-cutoff" property:
// every downstream query keyed on this file's current revision stays valid.
func (d *Database) SetFileText(id FileId, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.fileEntry(id)
	if e.hasText && e.text == text {
		return
	}
	e.text = text
	e.hasText = true
	d.bumpRevision()
}

// SetFileProject records which project owns a file.
func (d *Database) SetFileProject(id FileId, project ProjectId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.fileEntry(id)
	if e.hasProject && e.project == project {
		return
	}
	e.project = project
	e.hasProject = true
	d.bumpRevision()
}

// SetFileRelPath records a file's path relative to its source root.
func (d *Database) SetFileRelPath(id FileId, relPath string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.fileEntry(id)
	if e.relPath == relPath {
		return
	}
	e.relPath = relPath
	d.bumpRevision()
}

// SetFileExists records whether id currently exists on disk — distinct from
// text being set, since a file can be referenced (e.g. by project_files)
// before its overlay text arrives.
func (d *Database) SetFileExists(id FileId, exists bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.fileEntry(id)
	if e.hasExists && e.exists == exists {
		return
	}
	e.exists = exists
	e.hasExists = true
	d.bumpRevision()
}

// SetSourceRoot records which source root a file belongs to.
func (d *Database) SetSourceRoot(id FileId, root SourceRootId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.fileEntry(id)
	if e.sourceRoot == root {
		return
	}
	e.sourceRoot = root
	d.bumpRevision()
}

// SetProjectConfig installs project's typed configuration, as produced by
// workspace.Loader.Load and handed to this setter by the embedding process
// (workspace never calls into db directly — see workspace/model.go's doc
// comment). Re-setting a value-equal config is a no-op, which is how a
// workspace reload with an unchanged Loader.Signature avoids invalidating
// everything downstream even if the caller re-parses defensively.
func (d *Database) SetProjectConfig(project ProjectId, cfg *workspace.ProjectConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.projectEntry(project)
	if e.config != nil && projectConfigEqual(e.config, cfg) {
		return
	}
	e.config = cfg
	d.bumpRevision()
}

// SetProjectFiles records the full set of FileIds belonging to project.
func (d *Database) SetProjectFiles(project ProjectId, files []FileId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.projectEntry(project)
	if fileIdsEqual(e.files, files) {
		return
	}
	e.files = append([]FileId(nil), files...)
	d.bumpRevision()
}

// SetJDKIndex installs project's bootstrap JDK index.
func (d *Database) SetJDKIndex(project ProjectId, idx *jdk.Index) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.projectEntry(project)
	if e.jdkIndex == idx {
		return
	}
	e.jdkIndex = idx
	d.bumpRevision()
}

// SetClasspathIndex installs project's classpath index.
func (d *Database) SetClasspathIndex(project ProjectId, idx *classpath.Index) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.projectEntry(project)
	if e.classpathIndex == idx {
		return
	}
	e.classpathIndex = idx
	d.bumpRevision()
}

func (d *Database) fileEntry(id FileId) *fileEntry {
	e, ok := d.files[id]
	if !ok {
		e = &fileEntry{}
		d.files[id] = e
	}
	return e
}

func (d *Database) projectEntry(id ProjectId) *projectEntry {
	e, ok := d.projects[id]
	if !ok {
		e = &projectEntry{}
		d.projects[id] = e
	}
	return e
}

func fileIdsEqual(a, b []FileId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// projectConfigEqual is a shallow, field-by-field comparison sufficient for
// early cutoff: ProjectConfig's fields are themselves value types or slices
// of value types produced fresh by each workspace.Loader.Load call, so a
// deep reflect.DeepEqual would work too but this avoids the dependency on
// reflection for a type this repo fully owns the shape of.
func projectConfigEqual(a, b *workspace.ProjectConfig) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.WorkspaceRoot != b.WorkspaceRoot || a.BuildSystem != b.BuildSystem || a.Java != b.Java {
		return false
	}
	if a.JDKHome != b.JDKHome || a.JDKRelease != b.JDKRelease {
		return false
	}
	if len(a.Modules) != len(b.Modules) || len(a.SourceRoots) != len(b.SourceRoots) ||
		len(a.Classpath) != len(b.Classpath) || len(a.OutputDirs) != len(b.OutputDirs) ||
		len(a.Dependencies) != len(b.Dependencies) || len(a.ModulePath) != len(b.ModulePath) ||
		len(a.JPMSModules) != len(b.JPMSModules) {
		return false
	}
	for i := range a.Modules {
		if a.Modules[i] != b.Modules[i] {
			return false
		}
	}
	for i := range a.SourceRoots {
		if a.SourceRoots[i] != b.SourceRoots[i] {
			return false
		}
	}
	for i := range a.Classpath {
		if a.Classpath[i] != b.Classpath[i] {
			return false
		}
	}
	for i := range a.OutputDirs {
		if a.OutputDirs[i] != b.OutputDirs[i] {
			return false
		}
	}
	for i := range a.Dependencies {
		if a.Dependencies[i] != b.Dependencies[i] {
			return false
		}
	}
	for i := range a.ModulePath {
		if a.ModulePath[i] != b.ModulePath[i] {
			return false
		}
	}
	for i := range a.JPMSModules {
		x, y := a.JPMSModules[i], b.JPMSModules[i]
		if x.Name != y.Name || strings.Join(x.Requires, "\x00") != strings.Join(y.Requires, "\x00") ||
			strings.Join(x.Exports, "\x00") != strings.Join(y.Exports, "\x00") ||
			strings.Join(x.Opens, "\x00") != strings.Join(y.Opens, "\x00") {
			return false
		}
	}
	return true
}
