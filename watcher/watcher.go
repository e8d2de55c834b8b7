// ABOUTME: Debounced recursive filesystem watcher that drives rebuilds on source changes.
// ABOUTME: Filters by extension and ignore list, batching rapid saves into one handler call.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on a file.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the lower-case name of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one observed file change.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives a deduplicated batch once changes settle past the
// debounce window. It is called from a single goroutine.
type Handler func(changes []Change)

// Options configures a Watcher. Zero fields get defaults.
type Options struct {
	Paths      []string      // roots watched recursively
	Extensions []string      // file extensions that count, e.g. [".tsx"]; empty means all
	Ignore     []string      // path segments or glob patterns to skip
	Debounce   time.Duration // settle time before a batch is dispatched, default 250ms
	BufferSize int           // pending change buffer, default 1000
}

// Stats tracks watcher activity for the dashboard and tests.
type Stats struct {
	Created       int
	Modified      int
	Removed       int
	Renamed       int
	Dropped       int // changes discarded because the buffer was full
	Batches       int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher observes source trees and dispatches debounced change batches.
type Watcher struct {
	opts    Options
	handler Handler
	fsw     *fsnotify.Watcher

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
	stats    Stats
}

// New creates a watcher for opts.Paths. Call Start to begin observing.
func New(opts Options, handler Handler) (*Watcher, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("watcher needs at least one path")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		opts:    opts,
		handler: handler,
		fsw:     fsw,
		changes: make(chan Change, opts.BufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking: one goroutine converts fsnotify
// events, another batches them. Both exit when Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	for _, root := range w.opts.Paths {
		if err := w.addRecursive(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	go w.processEvents()
	go w.debounceLoop()

	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// Stats returns a snapshot of activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// WatchedDirs returns the directories currently registered with fsnotify.
func (w *Watcher) WatchedDirs() []string {
	return w.fsw.WatchList()
}

// addRecursive registers root and every non-ignored subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// shouldIgnore checks path segments and base-name globs against the ignore list.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	segments := strings.Split(filepath.ToSlash(path), "/")

	for _, pattern := range w.opts.Ignore {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}

// wantsFile applies the extension filter.
func (w *Watcher) wantsFile(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// processEvents converts fsnotify events into Changes and buffers them.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// fsnotify errors (e.g. overflow) are not fatal; the next
			// settled batch still reflects the files that changed.
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	// Directories created under a watched root join the watch set. No
	// change is dispatched for the directory itself.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}

	if !w.wantsFile(event.Name) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return // chmod and friends
	}

	change := Change{Path: event.Name, Op: op, Time: time.Now()}

	w.mu.Lock()
	switch op {
	case OpCreate:
		w.stats.Created++
	case OpWrite:
		w.stats.Modified++
	case OpRemove:
		w.stats.Removed++
	case OpRename:
		w.stats.Renamed++
	}
	w.stats.LastEventPath = change.Path
	w.stats.LastEventTime = change.Time
	w.mu.Unlock()

	select {
	case w.changes <- change:
	default:
		w.mu.Lock()
		w.stats.Dropped++
		w.mu.Unlock()
	}
}

// debounceLoop batches changes and calls the handler once the window
// passes with no new events.
func (w *Watcher) debounceLoop() {
	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			deduped := dedupe(batch)
			if w.handler != nil {
				w.handler(deduped)
			}
			w.mu.Lock()
			w.stats.Batches++
			w.mu.Unlock()
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-w.done:
			flush()
			return

		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case <-timerC:
			flush()
		}
	}
}

// dedupe keeps the most recent change per path, preserving first-seen order.
func dedupe(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	result := make([]Change, 0, len(changes))

	for _, change := range changes {
		if idx, ok := seen[change.Path]; ok {
			result[idx] = change
			continue
		}
		seen[change.Path] = len(result)
		result = append(result, change)
	}
	return result
}
