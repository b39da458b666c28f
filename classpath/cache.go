package classpath

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"nova/internal/cachefile"
	"nova/internal/logging"
)

// Cache is the classpath entry's on-disk cache: jar fingerprint -> scanned
// class listing. The listing itself lives in a modernc.org/sqlite table
// (jar_classes), one JSON payload per (fingerprint, target release); Lookup
// and Store read and write only that table, so a process restart with an
// unchanged jar skips the rescan. A JSON manifest (internal/cachefile) is
// also opened and saved on Close, but no cache operation records entries in
// it.
type Cache struct {
	manifest *cachefile.Manifest
	db       *sql.DB
	log      *logging.Logger
}

// cachedClasses is the JSON payload stored per fingerprint; classLocation is
// small enough that encoding the whole map is cheaper than a join-heavy
// schema for what is, in practice, at most a few thousand entries per jar.
type cachedClasses struct {
	Classes        map[string][]classLocation `json:"classes"`
	ModuleName     string                     `json:"module_name"`
	Automatic      bool                       `json:"automatic"`
	ModuleRequires []string                   `json:"module_requires,omitempty"`
	ModuleExports  []string                   `json:"module_exports,omitempty"`
	ModuleOpens    []string                   `json:"module_opens,omitempty"`
}

// OpenCache opens (or creates) the classpath cache rooted at workspaceRoot.
func OpenCache(workspaceRoot string) (*Cache, error) {
	manifest := cachefile.Open(workspaceRoot, "classpath")

	dbPath := filepath.Join(workspaceRoot, ".nova", "cache", "classpath.sqlite")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("classpath: creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("classpath: opening cache index: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS jar_classes (
		fingerprint TEXT NOT NULL,
		target_release INTEGER NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (fingerprint, target_release)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("classpath: creating cache index schema: %w", err)
	}

	return &Cache{manifest: manifest, db: db, log: logging.Get(logging.CategoryClasspath)}, nil
}

// Close releases the cache's sqlite handle and flushes the JSON manifest.
func (c *Cache) Close() error {
	if err := c.manifest.Save(); err != nil {
		return err
	}
	return c.db.Close()
}

// Lookup returns a previously scanned entry for (fingerprint, targetRelease),
// if present. Spec §4.3 keys the cache on both: the overlay resolution a
// caller asked for is part of what was cached, not just the jar's identity.
func (c *Cache) Lookup(ctx context.Context, fingerprint string, targetRelease int) (*Entry, bool) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM jar_classes WHERE fingerprint = ? AND target_release = ?`,
		fingerprint, targetRelease).Scan(&payload)
	if err != nil {
		return nil, false
	}
	var cc cachedClasses
	if err := json.Unmarshal(payload, &cc); err != nil {
		c.log.Warn("classpath: corrupt cache payload for %s: %v", fingerprint, err)
		return nil, false
	}
	return &Entry{
		Kind:           EntryJar,
		Fingerprint:    fingerprint,
		ModuleName:     cc.ModuleName,
		Automatic:      cc.Automatic,
		ModuleRequires: cc.ModuleRequires,
		ModuleExports:  cc.ModuleExports,
		ModuleOpens:    cc.ModuleOpens,
		classes:        cc.Classes,
	}, true
}

// Store records e's scanned class listing under (fingerprint, targetRelease).
func (c *Cache) Store(ctx context.Context, fingerprint string, targetRelease int, e *Entry) {
	payload, err := json.Marshal(cachedClasses{
		Classes:        e.classes,
		ModuleName:     e.ModuleName,
		Automatic:      e.Automatic,
		ModuleRequires: e.ModuleRequires,
		ModuleExports:  e.ModuleExports,
		ModuleOpens:    e.ModuleOpens,
	})
	if err != nil {
		c.log.Warn("classpath: failed to marshal cache payload for %s: %v", fingerprint, err)
		return
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO jar_classes (fingerprint, target_release, payload) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint, target_release) DO UPDATE SET payload = excluded.payload`,
		fingerprint, targetRelease, payload); err != nil {
		c.log.Warn("classpath: failed to store cache payload for %s: %v", fingerprint, err)
	}
}
