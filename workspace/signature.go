package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// computeSignature walks root and hashes the (path, mtime, size) of every
// file matching one of patterns, sorted by path — spec §4.13's "ordered
// (path, content pointer identity)" workspace signature. Equal signatures
// across two loads mean a reload can skip re-parsing entirely.
func computeSignature(root string, patterns []PathPattern) (string, error) {
	type entry struct {
		rel   string
		mtime int64
		size  int64
	}
	var entries []entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if p.Matches(rel) {
				info, ierr := d.Info()
				if ierr != nil {
					return nil
				}
				entries = append(entries, entry{rel: rel, mtime: info.ModTime().UnixNano(), size: info.Size()})
				break
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s:%d:%d\n", e.rel, e.mtime, e.size)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
