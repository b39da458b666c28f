// Package db is Nova's query database (spec §4.12): the spine every other
// package is wired into. It owns immutable inputs (file text, per-project
// config, the classpath/JDK indexes) behind setters that bump a revision on
// real change only, memoizes the derived queries layered on top (parse
// tree, item tree, type checker, diagnostics), and exposes a cancellation
// token that a revision bump invalidates so an in-flight query racing
// against a write fails cleanly instead of returning a torn result.
//
// Grounded directly on spec §4.12/§5/§6 — no pack example implements a
// Salsa-style incremental database to draw a structure from. The
// memoization/cancellation/stats vocabulary below (Revision, Token,
// QueryStats, QueryError) is this package's own, built the way the rest of
// this repo builds things: small arena-and-map state next to a narrow
// query-method surface, the same shape `typeck.Checker` and `classpath.Index`
// use internally.
package db

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nova/classpath"
	"nova/hir"
	"nova/internal/logging"
	"nova/jdk"
	"nova/syntax"
	"nova/typeck"
	"nova/workspace"
)

type fileEntry struct {
	text       string
	hasText    bool
	project    ProjectId
	hasProject bool
	relPath    string
	exists     bool
	hasExists  bool
	sourceRoot SourceRootId
}

type projectEntry struct {
	config         *workspace.ProjectConfig
	files          []FileId
	jdkIndex       *jdk.Index
	classpathIndex *classpath.Index
}

type parseCacheEntry struct {
	rev    Revision
	result syntax.ParseResult
}

type itemTreeCacheEntry struct {
	rev  Revision
	tree *hir.ItemTree
}

type checkerCacheEntry struct {
	rev     Revision
	checker *typeck.Checker
}

// Database is the query database spine. The zero value is not usable; build
// one with New.
type Database struct {
	mu       sync.RWMutex
	revision Revision
	token    *Token

	files    map[FileId]*fileEntry
	projects map[ProjectId]*projectEntry

	parseCache    map[FileId]*parseCacheEntry
	itemTreeCache map[FileId]*itemTreeCacheEntry
	checkerCache  map[FileId]*checkerCacheEntry
	cacheMu       sync.Mutex

	nextFileID       uint32
	nextProjectID    uint32
	nextSourceRootID uint32
	idMu             sync.Mutex

	stats *statsTable
	group singleflight.Group

	log *logging.Logger
}

// New constructs an empty Database with a fresh revision and cancellation
// token.
func New() *Database {
	return &Database{
		files:         make(map[FileId]*fileEntry),
		projects:      make(map[ProjectId]*projectEntry),
		parseCache:    make(map[FileId]*parseCacheEntry),
		itemTreeCache: make(map[FileId]*itemTreeCacheEntry),
		checkerCache:  make(map[FileId]*checkerCacheEntry),
		token:         newToken(nil),
		stats:         newStatsTable(),
		log:           logging.Get(logging.CategoryDB),
	}
}

// AllocFileId, AllocProjectId and AllocSourceRootId hand out fresh stable
// ids (spec §4.12, "allocated externally and remain valid for the lifetime
// of a workspace"). A reload that preserves a file's identity simply reuses
// the id it already has instead of calling these again.
func (d *Database) AllocFileId() FileId {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	d.nextFileID++
	return FileId(d.nextFileID)
}

func (d *Database) AllocProjectId() ProjectId {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	d.nextProjectID++
	return ProjectId(d.nextProjectID)
}

func (d *Database) AllocSourceRootId() SourceRootId {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	d.nextSourceRootID++
	return SourceRootId(d.nextSourceRootID)
}

// Revision returns the database's current logical clock value.
func (d *Database) Revision() Revision {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Token returns the cancellation token in effect for the current revision.
// A query captures this once at the start of a request and checks
// IsCancelled at its checkpoints; it never re-reads Database.Token mid-query,
// since that would defeat the "clean state after cancellation" guarantee.
func (d *Database) Token() *Token {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.token
}

// Cancel cancels the current revision's token directly, without waiting for
// a write. Used by a request's deadline timer (§5, "Timeouts").
func (d *Database) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token.Cancel()
}

// bumpRevision must be called with d.mu held for writing. It cancels the
// outgoing token and installs a fresh one, so any query still holding the
// old token observes cancellation at its next checkpoint rather than
// silently reading inputs from two different revisions.
func (d *Database) bumpRevision() {
	d.token.Cancel()
	d.revision++
	d.token = newToken(nil)
}

// Stats returns the accumulated execution/cache-hit/elapsed counters for
// query (one of the QueryName* constants).
func (d *Database) Stats(query string) QueryStats {
	return d.stats.Snapshot(query)
}

// checkCancelled is the mandatory checkpoint spec §5 requires "at the entry
// of every query" and before each loop iteration bounded by input size. It
// folds in ctx's deadline as well, since §5 treats a deadline as just
// another source of cancellation.
func checkCancelled(ctx context.Context, tok *Token) error {
	if tok.IsCancelled() {
		return ErrCancelled
	}
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

func timed(op string) func() time.Duration {
	t := logging.StartTimer(logging.CategoryDB, op)
	return func() time.Duration { return t.StopWithThreshold(200 * time.Millisecond) }
}
