// ABOUTME: Bridge connecting the dev loop's event stream to the Bubble Tea message loop.
// ABOUTME: EventBridge satisfies the loop's Publisher interface and injects events via program.Send.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfglab/flowviz/sse"
)

// EventBridge wraps a tea.Program's Send method for injecting build events
// into the Bubble Tea message loop. It satisfies the dev loop's Publisher
// interface, so it can sit next to the SSE event bus in a fanout.
type EventBridge struct {
	send func(msg tea.Msg)
	now  func() time.Time
}

// NewEventBridge creates an EventBridge that sends messages via the given
// function. Typically called with program.Send as the argument.
func NewEventBridge(send func(msg tea.Msg)) *EventBridge {
	return &EventBridge{send: send, now: time.Now}
}

// Publish wraps the event in a BuildEventMsg and sends it to the dashboard.
func (b *EventBridge) Publish(evt sse.Event) {
	b.send(BuildEventMsg{Event: evt, At: b.now()})
}
