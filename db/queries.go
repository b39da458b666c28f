package db

import (
	"context"
	"fmt"

	"nova/classpath"
	"nova/diagnostic"
	"nova/hir"
	"nova/jdk"
	"nova/resolve"
	"nova/syntax"
	"nova/typeck"
	"nova/types"
	"nova/workspace"
)

// Query name constants, used both as singleflight keys and stats labels —
// spec §6's consumer query API, named exactly as the spec names them.
const (
	QueryFileText            = "file_text"
	QueryParseTree           = "parse_tree"
	QueryItemTree            = "item_tree"
	QueryResolveNameAtOffset = "resolve_name_at_offset"
	QueryResolveMethodCall   = "resolve_method_call"
	QueryTypeAtOffsetDisplay = "type_at_offset_display"
	QueryTypeDiagnostics     = "type_diagnostics"
	QueryFlowDiagnostics     = "flow_diagnostics"
	QueryAllDiagnostics      = "all_diagnostics"
	QueryClasspathIndex      = "classpath_index"
	QueryJDKIndex            = "jdk_index"
	QueryJavaLanguageLevel   = "java_language_level"
)

// FileText returns the current text of id (spec §6, "Text & structural:
// file_text"). It never touches disk: an input must have been installed via
// SetFileText first.
func (d *Database) FileText(ctx context.Context, id FileId) (string, error) {
	tok := d.Token()
	if err := checkCancelled(ctx, tok); err != nil {
		return "", err
	}
	d.mu.RLock()
	e, ok := d.files[id]
	d.mu.RUnlock()
	if !ok || !e.hasText {
		return "", &QueryError{Code: "not-found", Query: QueryFileText, Err: fmt.Errorf("file %d has no text set", id)}
	}
	return e.text, nil
}

// ParseTree lexes and parses id's current text, memoized against the
// database's revision (spec §6, "parse_tree").
func (d *Database) ParseTree(ctx context.Context, id FileId) (syntax.ParseResult, error) {
	tok := d.Token()
	if err := checkCancelled(ctx, tok); err != nil {
		return syntax.ParseResult{}, err
	}
	text, err := d.FileText(ctx, id)
	if err != nil {
		return syntax.ParseResult{}, err
	}

	rev := d.Revision()
	d.cacheMu.Lock()
	if cached, ok := d.parseCache[id]; ok && cached.rev == rev {
		d.cacheMu.Unlock()
		d.stats.recordHit(QueryParseTree)
		return cached.result, nil
	}
	d.cacheMu.Unlock()

	key := fmt.Sprintf("%s:%d:%d", QueryParseTree, id, rev)
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		stop := timed("parse_tree")
		result := syntax.Parse([]byte(text))
		elapsed := stop()
		d.stats.recordExecution(QueryParseTree, elapsed)
		d.cacheMu.Lock()
		d.parseCache[id] = &parseCacheEntry{rev: rev, result: result}
		d.cacheMu.Unlock()
		return result, nil
	})
	if err != nil {
		return syntax.ParseResult{}, err
	}
	return v.(syntax.ParseResult), nil
}

// ItemTree lowers id's parse tree into a declaration skeleton (spec §6,
// "item_tree").
func (d *Database) ItemTree(ctx context.Context, id FileId) (*hir.ItemTree, error) {
	tok := d.Token()
	if err := checkCancelled(ctx, tok); err != nil {
		return nil, err
	}
	parsed, err := d.ParseTree(ctx, id)
	if err != nil {
		return nil, err
	}

	rev := d.Revision()
	d.cacheMu.Lock()
	if cached, ok := d.itemTreeCache[id]; ok && cached.rev == rev {
		d.cacheMu.Unlock()
		d.stats.recordHit(QueryItemTree)
		return cached.tree, nil
	}
	d.cacheMu.Unlock()

	key := fmt.Sprintf("%s:%d:%d", QueryItemTree, id, rev)
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		stop := timed("item_tree")
		tree := hir.LowerItemTree(parsed.Root)
		elapsed := stop()
		d.stats.recordExecution(QueryItemTree, elapsed)
		d.cacheMu.Lock()
		d.itemTreeCache[id] = &itemTreeCacheEntry{rev: rev, tree: tree}
		d.cacheMu.Unlock()
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*hir.ItemTree), nil
}

// JDKIndex returns project's bootstrap JDK index (spec §6, "jdk_index").
func (d *Database) JDKIndex(ctx context.Context, project ProjectId) (*jdk.Index, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.projects[project]
	if !ok || e.jdkIndex == nil {
		return nil, &QueryError{Code: "not-found", Query: QueryJDKIndex, Err: fmt.Errorf("project %d has no jdk index set", project)}
	}
	return e.jdkIndex, nil
}

// ClasspathIndex returns project's classpath index (spec §6,
// "classpath_index"), or nil without error if the project has none yet
// (e.g. a Simple project with no dependencies). When the project's config
// names a JPMS module of its own, the returned index is scoped with
// WithRequiredModules so every lookup through it enforces spec §4.8's
// export/open visibility; an unnamed-module project gets the stored index
// back unchanged (no JPMS filtering).
func (d *Database) ClasspathIndex(ctx context.Context, project ProjectId) (*classpath.Index, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.projects[project]
	if !ok {
		return nil, &QueryError{Code: "not-found", Query: QueryClasspathIndex, Err: fmt.Errorf("project %d not installed", project)}
	}
	if e.classpathIndex == nil || e.config == nil || len(e.config.JPMSModules) == 0 {
		return e.classpathIndex, nil
	}
	requires := make(map[string]bool, len(e.config.JPMSModules[0].Requires))
	for _, r := range e.config.JPMSModules[0].Requires {
		requires[r] = true
	}
	return e.classpathIndex.WithRequiredModules(requires), nil
}

// JavaLanguageLevel returns the configured language level for the project
// id's file belongs to (spec §6, "java_language_level").
func (d *Database) JavaLanguageLevel(ctx context.Context, id FileId) (int, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return 0, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	fe, ok := d.files[id]
	if !ok || !fe.hasProject {
		return 0, &QueryError{Code: "not-found", Query: QueryJavaLanguageLevel, Err: fmt.Errorf("file %d has no project set", id)}
	}
	pe, ok := d.projects[fe.project]
	if !ok || pe.config == nil {
		return 0, &QueryError{Code: "not-found", Query: QueryJavaLanguageLevel, Err: fmt.Errorf("project %d has no config set", fe.project)}
	}
	return pe.config.Java.LanguageLevel(), nil
}

// ProjectConfig returns the currently installed config for project.
func (d *Database) ProjectConfig(ctx context.Context, project ProjectId) (*workspace.ProjectConfig, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.projects[project]
	if !ok || e.config == nil {
		return nil, &QueryError{Code: "not-found", Query: "project_config", Err: fmt.Errorf("project %d has no config set", project)}
	}
	return e.config, nil
}

// checker builds (or reuses) the typeck.Checker for id's owning file,
// keyed against the database's current revision the same way ParseTree and
// ItemTree are. This is the query every resolution/type/diagnostic entry
// point below funnels through, matching typeck.Checker's own one-checker-
// per-compilation-unit design.
func (d *Database) checker(ctx context.Context, id FileId) (*typeck.Checker, error) {
	tree, err := d.ItemTree(ctx, id)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	fe, hasFile := d.files[id]
	d.mu.RUnlock()
	var jdkIdx *jdk.Index
	var cpIdx *classpath.Index
	if hasFile && fe.hasProject {
		d.mu.RLock()
		if pe, ok := d.projects[fe.project]; ok {
			jdkIdx = pe.jdkIndex
			cpIdx = pe.classpathIndex
			// Scope cpIdx to the project's own module requires, the same way
			// ClasspathIndex does, so type resolution inside the checker
			// enforces spec §4.8's JPMS export/open visibility instead of
			// only a direct ClasspathIndex query caller getting it.
			if cpIdx != nil && pe.config != nil && len(pe.config.JPMSModules) > 0 {
				requires := make(map[string]bool, len(pe.config.JPMSModules[0].Requires))
				for _, r := range pe.config.JPMSModules[0].Requires {
					requires[r] = true
				}
				cpIdx = cpIdx.WithRequiredModules(requires)
			}
		}
		d.mu.RUnlock()
	}

	rev := d.Revision()
	d.cacheMu.Lock()
	if cached, ok := d.checkerCache[id]; ok && cached.rev == rev {
		d.cacheMu.Unlock()
		d.stats.recordHit("checker")
		return cached.checker, nil
	}
	d.cacheMu.Unlock()

	key := fmt.Sprintf("checker:%d:%d", id, rev)
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		// cpIdx is only wrapped into the resolve.ClasspathIndex interface
		// when non-nil: assigning a nil *classpath.Index to an interface
		// variable directly would produce a non-nil interface holding a nil
		// pointer, and typeck.NewChecker's "classpath != nil" check would
		// then wrongly treat the project as having a classpath.
		var resolveCp resolve.ClasspathIndex
		if cpIdx != nil {
			resolveCp = cpIdx
		}
		stop := timed("build_checker")
		c := typeck.NewChecker(tree, jdkIdx, resolveCp)
		elapsed := stop()
		d.stats.recordExecution("checker", elapsed)
		d.cacheMu.Lock()
		d.checkerCache[id] = &checkerCacheEntry{rev: rev, checker: c}
		d.cacheMu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*typeck.Checker), nil
}

// TypeDiagnostics runs the full type checker over id's compilation unit
// (spec §6, "type_diagnostics(file)").
func (d *Database) TypeDiagnostics(ctx context.Context, id FileId) ([]diagnostic.Diagnostic, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return nil, err
	}
	c, err := d.checker(ctx, id)
	if err != nil {
		return nil, err
	}
	stop := timed("type_diagnostics")
	diags := c.TypeDiagnostics()
	d.stats.recordExecution(QueryTypeDiagnostics, stop())
	return diags, nil
}

// FlowDiagnostics is spec §6's "flow_diagnostics(method | constructor)".
// Nova's flow analyses (reachability, definite assignment, nullness) are
// folded into checkMethod's per-method diagnostics, so exposing them
// per-file here and leaving method-granularity filtering to the caller
// matches how typeck.Checker itself only ever checks whole compilation
// units, never a single method in isolation.
func (d *Database) FlowDiagnostics(ctx context.Context, id FileId) ([]diagnostic.Diagnostic, error) {
	diags, err := d.TypeDiagnostics(ctx, id)
	if err != nil {
		return nil, err
	}
	stop := timed("flow_diagnostics")
	var flowDiags []diagnostic.Diagnostic
	for _, diag := range diags {
		switch diag.Code {
		case typeck.CodeFlowUnreachable, typeck.CodeFlowUnassigned, typeck.CodeFlowNullDeref:
			flowDiags = append(flowDiags, diag)
		}
	}
	d.stats.recordExecution(QueryFlowDiagnostics, stop())
	return flowDiags, nil
}

// AllDiagnostics combines every diagnostic source for id (spec §6,
// "all_diagnostics(file)"): the parse tree's own syntax diagnostics followed
// by type_diagnostics, which already folds in flow.
func (d *Database) AllDiagnostics(ctx context.Context, id FileId) ([]diagnostic.Diagnostic, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return nil, err
	}
	parsed, err := d.ParseTree(ctx, id)
	if err != nil {
		return nil, err
	}
	typeDiags, err := d.TypeDiagnostics(ctx, id)
	if err != nil {
		return nil, err
	}
	stop := timed("all_diagnostics")
	out := append([]diagnostic.Diagnostic(nil), parsed.Diagnostics...)
	out = append(out, typeDiags...)
	d.stats.recordExecution(QueryAllDiagnostics, stop())
	return out, nil
}

// AllDiagnosticsForProject fans out AllDiagnostics across every file the
// project currently owns (spec §5, "the request fans out explicitly, e.g.
// diagnostics for all open files"), checking cancellation before each file
// the way §5's "before visiting the next file" checkpoint requires.
func (d *Database) AllDiagnosticsForProject(ctx context.Context, project ProjectId) (map[FileId][]diagnostic.Diagnostic, error) {
	d.mu.RLock()
	pe, ok := d.projects[project]
	var files []FileId
	if ok {
		files = append(files, pe.files...)
	}
	d.mu.RUnlock()

	out := make(map[FileId][]diagnostic.Diagnostic, len(files))
	for _, fid := range files {
		if err := checkCancelled(ctx, d.Token()); err != nil {
			return nil, err
		}
		diags, err := d.AllDiagnostics(ctx, fid)
		if err != nil {
			return nil, err
		}
		out[fid] = diags
	}
	return out, nil
}

// ResolveMethodCall resolves the method call at exprId within mid's body
// (spec §6, "resolve_method_call(file, expr)"). It deliberately routes
// through typeck.Checker.ResolveMethodCall rather than TypeDiagnostics, so
// it never runs a full-body check for every method in the file — the
// realization of §8's "Demand-drivenness" property ("resolve_method_call
// executes typeck_body zero times for its enclosing body when the receiver
// type is known").
func (d *Database) ResolveMethodCall(ctx context.Context, id FileId, mid hir.MethodId, exprId hir.ExprId) (types.ResolvedMethod, bool, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return types.ResolvedMethod{}, false, err
	}
	c, err := d.checker(ctx, id)
	if err != nil {
		return types.ResolvedMethod{}, false, err
	}
	stop := timed("resolve_method_call")
	resolved, ok := c.ResolveMethodCall(mid, exprId)
	d.stats.recordExecution(QueryResolveMethodCall, stop())
	return resolved, ok, nil
}

// TypeAtOffsetDisplay is spec §6's "type_at_offset_display" goto helper.
func (d *Database) TypeAtOffsetDisplay(ctx context.Context, id FileId, offset int) (string, bool, error) {
	if err := checkCancelled(ctx, d.Token()); err != nil {
		return "", false, err
	}
	c, err := d.checker(ctx, id)
	if err != nil {
		return "", false, err
	}
	stop := timed("type_at_offset_display")
	display, ok := c.TypeAtOffsetDisplay(offset)
	d.stats.recordExecution(QueryTypeAtOffsetDisplay, stop())
	return display, ok, nil
}

// ResolveNameAtOffset is spec §6's "resolve_name_at_offset": it resolves
// whatever name (a type, a field, a local) sits at offset using the same
// checker/resolver wiring TypeAtOffsetDisplay uses, returning the resolved
// type's display form as the answer an editor's hover/goto-definition would
// want. A dedicated name-resolution return shape beyond "what type is this"
// is out of scope for typeck's current surface — see DESIGN.md.
func (d *Database) ResolveNameAtOffset(ctx context.Context, id FileId, offset int) (string, bool, error) {
	return d.TypeAtOffsetDisplay(ctx, id, offset)
}
