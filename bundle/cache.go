// ABOUTME: Content-digest build cache that lets the watch loop skip no-op rebuilds.
// ABOUTME: Digest hashes the source tree contents so touch-saves do not trigger the bundler.
package bundle

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Digest walks the given roots and returns a sha256 over the sorted relative
// paths and contents of files matching the extensions. Empty exts means every
// file counts. Missing roots contribute nothing; other walk errors abort.
func Digest(roots []string, exts []string) (string, error) {
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}

	var paths []string
	byPath := make(map[string]string)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if len(extSet) > 0 && !extSet[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			sum, err := hashFile(path)
			if err != nil {
				return err
			}
			paths = append(paths, path)
			byPath[path] = sum
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("digesting %s: %w", root, err)
		}
	}

	sort.Strings(paths)
	h := sha256.New()
	for _, p := range paths {
		fmt.Fprintf(h, "%s\x00%s\x00", p, byPath[p])
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Cache remembers the input digest of the last successful build per outfile.
type Cache struct {
	mu   sync.RWMutex
	last map[string]string
}

// NewCache creates an empty build cache.
func NewCache() *Cache {
	return &Cache{last: make(map[string]string)}
}

// Unchanged reports whether the digest matches the last successful build for
// the outfile. An empty digest never matches.
func (c *Cache) Unchanged(outfile, digest string) bool {
	if digest == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last[outfile] == digest
}

// Remember records the digest of a successful build.
func (c *Cache) Remember(outfile, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[outfile] = digest
}

// Clear forgets all recorded builds.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = make(map[string]string)
}
