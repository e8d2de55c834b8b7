// ABOUTME: Server-side graphviz rendering for the per-function render endpoint.
// ABOUTME: Pipes DOT text to the dot binary and caches results keyed by content hash.
package devserver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// RenderFunc is the signature for a DOT rendering function. The server's
// default implementation shells out to graphviz; tests inject fakes.
type RenderFunc func(ctx context.Context, dotText string, format string) ([]byte, error)

// GraphvizAvailable checks whether the graphviz dot command is installed and
// reachable. The render endpoint degrades to DOT-only when it is not.
func GraphvizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// RenderDOTSource renders raw DOT text to the requested format. "dot" returns
// the input unchanged; "svg" and "png" shell out to graphviz.
func RenderDOTSource(ctx context.Context, dotText string, format string) ([]byte, error) {
	if dotText == "" {
		return nil, fmt.Errorf("cannot render empty DOT text")
	}

	switch format {
	case "dot":
		return []byte(dotText), nil
	case "svg", "png":
		return renderWithGraphviz(ctx, dotText, format)
	default:
		return nil, fmt.Errorf("unsupported format %q: supported formats are dot, svg, png", format)
	}
}

// renderWithGraphviz pipes DOT text to the graphviz dot command and returns
// the output.
func renderWithGraphviz(ctx context.Context, dotText string, format string) ([]byte, error) {
	if !GraphvizAvailable() {
		return nil, fmt.Errorf("graphviz dot command not found: install graphviz to render %s output", format)
	}

	cmd := exec.CommandContext(ctx, "dot", "-T"+format)
	cmd.Stdin = strings.NewReader(dotText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("graphviz dot command failed: %w: %s", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// cacheEntry holds a single cached render result with its creation timestamp.
type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// renderCache wraps a RenderFunc with an in-memory cache keyed by the sha256
// of the DOT content and the format. Rendering the same unchanged graph on
// every page load is the common case in a dev session.
type renderCache struct {
	renderFn RenderFunc
	ttl      time.Duration
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
}

// newRenderCache creates a renderCache with the given TTL.
func newRenderCache(renderFn RenderFunc, ttl time.Duration) *renderCache {
	return &renderCache{
		renderFn: renderFn,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Render returns the cached result when fresh, otherwise calls the wrapped
// function. Errors are never cached.
func (c *renderCache) Render(ctx context.Context, dotText string, format string) ([]byte, error) {
	key := renderCacheKey(dotText, format)

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.createdAt) < c.ttl {
		data := entry.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := c.renderFn(ctx, dotText, format)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{data: data, createdAt: time.Now()}
	c.mu.Unlock()

	return data, nil
}

// Len returns the number of entries currently cached (including expired ones).
func (c *renderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all cached results. The dev loop calls this after each build so
// refreshed data never serves stale renders.
func (c *renderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func renderCacheKey(dotText, format string) string {
	h := sha256.Sum256([]byte(dotText))
	return fmt.Sprintf("%x:%s", h, format)
}
