// ABOUTME: Catalog of analyzed functions inside the visualization data directory.
// ABOUTME: Lists per-function graph dumps and maintains the functions.json index the UI loads first.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cfglab/flowviz/graph"
)

// File names the analyzer writes into the data directory.
const (
	GraphFile = "mir.json"
	IndexFile = "functions.json"
)

// ErrNotFound is returned when a function has no graph dump on disk.
var ErrNotFound = errors.New("function not found")

// ErrInvalidName is returned for function names that could escape the data
// directory or break the on-disk layout.
var ErrInvalidName = errors.New("invalid function name")

// Catalog reads and maintains a data directory of per-function graph dumps.
// Layout: <dir>/<function>/mir.json plus <dir>/functions.json as the index.
type Catalog struct {
	dir string
}

// New creates a catalog rooted at the given data directory. The directory
// does not need to exist yet; readers treat a missing directory as empty.
func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the data directory the catalog is rooted at.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the sorted names of all functions that have a graph dump.
func (c *Catalog) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.dir, entry.Name(), GraphFile)); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Graph reads and decodes the graph dump for the named function.
func (c *Catalog) Graph(name string) (*graph.Graph, error) {
	if err := validateFunctionName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(c.dir, name, GraphFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("function %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("opening graph for %q: %w", name, err)
	}
	defer f.Close()

	g, err := graph.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}
	return g, nil
}

// ReadIndex parses functions.json. The analyzer writes a flat name-to-name
// map; the UI uses the keys as its function list.
func (c *Catalog) ReadIndex() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", IndexFile, err)
	}

	index := make(map[string]string)
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", IndexFile, err)
	}
	return index, nil
}

// WriteIndex rescans the data directory and atomically rewrites
// functions.json, keeping the analyzer's flat name-to-name shape. Index
// entries for functions that vanished from disk are dropped. Returns the
// names written.
func (c *Catalog) WriteIndex() ([]string, error) {
	names, err := c.List()
	if err != nil {
		return nil, err
	}

	index := make(map[string]string, len(names))
	for _, name := range names {
		index[name] = name
	}

	data, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", IndexFile, err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Write to a temp file, fsync, then atomically rename so a crashed
	// rewrite never leaves the UI with a truncated index.
	path := filepath.Join(c.dir, IndexFile)
	tmpPath := path + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create temp index: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("fsync temp index: %w", err)
	}
	_ = tmp.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("rename temp index: %w", err)
	}

	return names, nil
}

// validateFunctionName rejects names that could cause path traversal or
// filesystem issues.
func validateFunctionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q must not contain '..'", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidName, name)
	}
	return nil
}
