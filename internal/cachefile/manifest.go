// Package cachefile implements a generic content-addressed manifest: a JSON
// file mapping a caller-chosen key (a jar path, a build file path) to a
// content hash plus the stat fields needed to tell whether the underlying
// file changed without rehashing it.
//
// Adapted from theRebelliousNerd-codenerd's internal/world/cache.go
// (FileCache/CacheEntry), generalized from one hardcoded global cache to one
// instance per caller so classpath and workspace can each keep their own
// manifest under different subdirectories of .nova/cache.
package cachefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"nova/internal/logging"
)

// Entry is the cached metadata for a single keyed file.
type Entry struct {
	Hash    string `json:"hash"`
	ModTime int64  `json:"mod_time"`
	Size    int64  `json:"size"`
}

// Manifest is a dirty-flag-gated JSON-backed content cache. Safe for
// concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Entry
	dirty   bool
	log     *logging.Logger
}

// Open loads (or starts a fresh) manifest at <workspaceRoot>/.nova/cache/<name>.json.
func Open(workspaceRoot, name string) *Manifest {
	path := filepath.Join(workspaceRoot, ".nova", "cache", name+".json")
	m := &Manifest{
		path:    path,
		entries: make(map[string]Entry),
		log:     logging.Get(logging.CategoryDB),
	}
	m.load()
	return m
}

func (m *Manifest) load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("cachefile: failed to read manifest %s: %v", m.path, err)
		}
		return
	}
	if err := json.Unmarshal(data, &m.entries); err != nil {
		m.log.Warn("cachefile: corrupt manifest %s, starting fresh: %v", m.path, err)
		m.entries = make(map[string]Entry)
	}
}

// Save writes the manifest to disk if it has unsaved changes.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// Lookup returns the cached hash for key if info's mtime and size still
// match what was recorded, reporting a cache hit.
func (m *Manifest) Lookup(key string, modTime int64, size int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if entry.ModTime == modTime && entry.Size == size {
		return entry.Hash, true
	}
	return "", false
}

// Update records the content hash for key.
func (m *Manifest) Update(key string, modTime int64, size int64, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{Hash: hash, ModTime: modTime, Size: size}
	m.dirty = true
}

// Delete removes a stale key, e.g. when a classpath entry disappears.
func (m *Manifest) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		m.dirty = true
	}
}

// Len reports the number of entries currently tracked.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
