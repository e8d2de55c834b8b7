// ABOUTME: The dev loop couples the file watcher to the bundler: change batches become rebuilds.
// ABOUTME: Outcomes land in build history and on the event bus; failures never stop the loop.
package devloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cfglab/flowviz/bundle"
	"github.com/cfglab/flowviz/history"
	"github.com/cfglab/flowviz/sse"
	"github.com/cfglab/flowviz/watcher"
)

// batchBuffer is how many settled change batches may queue while a build is
// running. Batches beyond that are dropped with a watch.error event.
const batchBuffer = 16

// Publisher is where the loop announces build lifecycle events. The dev
// server's EventBus satisfies it; tests use small fakes.
type Publisher interface {
	Publish(evt sse.Event)
}

// Fanout returns a Publisher that forwards every event to each target. The
// dev command uses it to feed the SSE bus and the terminal dashboard at once.
// Nil targets are skipped.
func Fanout(targets ...Publisher) Publisher {
	return fanoutPublisher(targets)
}

type fanoutPublisher []Publisher

func (f fanoutPublisher) Publish(evt sse.Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(evt)
		}
	}
}

// Loop watches source trees and rebuilds the bundle for every settled change
// batch. Bundler is required; everything else is optional.
type Loop struct {
	Watch   watcher.Options // source trees, extension filter, debounce
	Bundler *bundle.Bundler
	Cache   *bundle.Cache  // skips rebuilds whose input digest is unchanged
	History *history.Store // persists outcomes for /api/builds
	Bus     Publisher      // receives build.* / reload / watch.error events
	Logf    func(format string, args ...any)

	// InitialBuild runs one build before watching so the bundle exists as
	// soon as the loop is up.
	InitialBuild bool

	// AfterBuild runs after every successful build. The dev command uses it
	// to drop the server's render cache.
	AfterBuild func()

	kickOnce sync.Once
	kickCh   chan struct{}

	mu sync.RWMutex
	w  *watcher.Watcher
}

// eventPayload is the JSON body carried by build lifecycle events.
type eventPayload struct {
	BuildID    string `json:"build_id,omitempty"`
	Trigger    string `json:"trigger,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Changed    int    `json:"changed,omitempty"`
	Outfile    string `json:"outfile,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Run watches until ctx is cancelled. Build failures are reported and
// published but never end the loop; only setup errors are fatal.
func (l *Loop) Run(ctx context.Context) error {
	if l.Bundler == nil {
		return fmt.Errorf("dev loop needs a bundler")
	}
	logf := l.logf()

	batches := make(chan []watcher.Change, batchBuffer)
	w, err := watcher.New(l.Watch, func(changes []watcher.Change) {
		select {
		case batches <- changes:
		default:
			logf("watch: dropping a change batch, builds are falling behind")
			l.publish(sse.TypeWatchError, eventPayload{Error: "change batch dropped"})
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	defer w.Stop()

	l.mu.Lock()
	l.w = w
	l.mu.Unlock()

	logf("watch: observing %v (extensions %v, debounce %s)",
		l.Watch.Paths, l.Watch.Extensions, l.Watch.Debounce)

	if l.InitialBuild {
		l.buildOnce(ctx, history.TriggerInitial, 0)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case changes := <-batches:
			for _, c := range changes {
				logf("watch: %s %s", c.Op, c.Path)
			}
			l.buildOnce(ctx, history.TriggerWatch, len(changes))
		case <-l.kicks():
			l.buildOnce(ctx, history.TriggerManual, 0)
		}
	}
}

// Kick requests an immediate manual rebuild. Non-blocking: while one is
// already pending further kicks are absorbed.
func (l *Loop) Kick() {
	select {
	case l.kicks() <- struct{}{}:
	default:
	}
}

// Stats returns watcher activity counters; zero value before Run starts.
func (l *Loop) Stats() watcher.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.w == nil {
		return watcher.Stats{}
	}
	return l.w.Stats()
}

// Watching reports whether the loop's watcher is observing the source trees.
func (l *Loop) Watching() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.w != nil && l.w.IsWatching()
}

// buildOnce runs a single digest-checked build cycle and reports the outcome.
func (l *Loop) buildOnce(ctx context.Context, trigger string, changed int) {
	logf := l.logf()

	// The digest is computed for every cycle so a successful build can prime
	// the cache, but only watch batches short-circuit on it: manual and
	// initial builds always run.
	var digest string
	if l.Cache != nil {
		var err error
		digest, err = bundle.Digest(l.Watch.Paths, l.Watch.Extensions)
		if err != nil {
			logf("watch: digest failed, building anyway: %v", err)
		} else if trigger == history.TriggerWatch && l.Cache.Unchanged(l.Bundler.Outfile, digest) {
			logf("watch: contents unchanged, skipping rebuild")
			return
		}
	}

	b := history.Build{
		ID:        history.NewBuildID(),
		StartedAt: time.Now(),
		Status:    history.StatusOK,
		Trigger:   trigger,
		Outfile:   l.Bundler.Outfile,
		Changed:   changed,
	}

	l.publish(sse.TypeBuildStarted, eventPayload{
		BuildID:   b.ID,
		Trigger:   trigger,
		StartedAt: b.StartedAt.UTC().Format(time.RFC3339),
		Changed:   changed,
	})
	logf("build: %s", l.Bundler.CommandLine())

	res, err := l.Bundler.Build(ctx)
	b.Duration = time.Since(b.StartedAt)

	if err != nil {
		b.Status = history.StatusFailed
		b.Error = err.Error()
		l.record(&b)
		logf("build: failed after %s: %v", b.Duration.Round(time.Millisecond), err)
		l.publish(sse.TypeBuildFailed, eventPayload{
			BuildID:    b.ID,
			Trigger:    trigger,
			DurationMS: b.Duration.Milliseconds(),
			Error:      err.Error(),
		})
		return
	}

	b.Duration = res.Duration
	l.record(&b)
	if l.Cache != nil && digest != "" {
		l.Cache.Remember(l.Bundler.Outfile, digest)
	}
	logf("build: wrote %s in %s", res.Outfile, res.Duration.Round(time.Millisecond))

	completed := eventPayload{
		BuildID:    b.ID,
		Trigger:    trigger,
		DurationMS: b.Duration.Milliseconds(),
		Changed:    changed,
		Outfile:    b.Outfile,
	}
	l.publish(sse.TypeBuildCompleted, completed)
	l.publish(sse.TypeReload, eventPayload{BuildID: b.ID, Outfile: b.Outfile})

	if l.AfterBuild != nil {
		l.AfterBuild()
	}
}

// record persists the outcome when a history store is wired.
func (l *Loop) record(b *history.Build) {
	if l.History == nil {
		return
	}
	if err := l.History.Record(b); err != nil {
		l.logf()("build: recording history: %v", err)
	}
}

// publish sends one event when a bus is wired.
func (l *Loop) publish(eventType string, payload eventPayload) {
	if l.Bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		l.logf()("build: encoding %s event: %v", eventType, err)
		return
	}
	l.Bus.Publish(sse.Event{Type: eventType, Data: string(data)})
}

func (l *Loop) logf() func(format string, args ...any) {
	if l.Logf != nil {
		return l.Logf
	}
	return log.Printf
}

func (l *Loop) kicks() chan struct{} {
	l.kickOnce.Do(func() {
		l.kickCh = make(chan struct{}, 1)
	})
	return l.kickCh
}
