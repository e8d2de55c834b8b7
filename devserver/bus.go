// ABOUTME: In-process event bus fanning build/reload events out to SSE subscribers.
// ABOUTME: Keeps a bounded history ring so late-joining clients replay recent events.
package devserver

import (
	"log"
	"sync"

	"github.com/cfglab/flowviz/sse"
)

// DefaultHistorySize is the number of events replayed to new subscribers.
const DefaultHistorySize = 100

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this starts dropping events.
const subscriberBuffer = 64

// EventBus distributes events to any number of SSE subscribers. Publish never
// blocks: slow subscribers lose events rather than stalling the build loop.
type EventBus struct {
	mu      sync.RWMutex
	history []sse.Event
	max     int
	subs    map[int]chan sse.Event
	nextID  int
	dropped int
	closed  bool
}

// NewEventBus creates a bus that retains up to historySize events for replay.
// A non-positive size gets DefaultHistorySize.
func NewEventBus(historySize int) *EventBus {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &EventBus{
		max:  historySize,
		subs: make(map[int]chan sse.Event),
	}
}

// Publish appends the event to the history ring and fans it out. Subscribers
// whose buffers are full are skipped and counted in Dropped.
func (b *EventBus) Publish(evt sse.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.history = append(b.history, evt)
	if len(b.history) > b.max {
		b.history = b.history[len(b.history)-b.max:]
	}

	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.dropped++
			log.Printf("events: dropped %s for subscriber %d (buffer full)", evt.Type, id)
		}
	}
}

// Subscribe registers a new subscriber. It returns a snapshot of the history
// ring, a live channel, and an unsubscribe func. The channel is closed by
// unsubscribe or by Close.
func (b *EventBus) Subscribe() ([]sse.Event, <-chan sse.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]sse.Event, len(b.history))
	copy(snapshot, b.history)

	ch := make(chan sse.Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return snapshot, ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return snapshot, ch, unsubscribe
}

// History returns a copy of the retained events.
func (b *EventBus) History() []sse.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make([]sse.Event, len(b.history))
	copy(snapshot, b.history)
	return snapshot
}

// SubscriberCount returns the number of active subscribers.
func (b *EventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many events were discarded due to full subscriber buffers.
func (b *EventBus) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close shuts the bus down: all subscriber channels are closed and further
// publishes are ignored.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
