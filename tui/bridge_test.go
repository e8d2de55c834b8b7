// ABOUTME: Tests for the EventBridge connecting the dev loop to the Bubble Tea message loop.
// ABOUTME: Validates message wrapping, arrival timestamps, and Publisher compatibility.
package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfglab/flowviz/sse"
)

func TestNewEventBridge(t *testing.T) {
	called := false
	bridge := NewEventBridge(func(msg tea.Msg) { called = true })

	if bridge == nil {
		t.Fatal("NewEventBridge returned nil")
	}
	if bridge.send == nil {
		t.Fatal("EventBridge.send is nil")
	}

	bridge.send(nil)
	if !called {
		t.Error("send function was not called")
	}
}

func TestEventBridgePublish(t *testing.T) {
	var received tea.Msg
	bridge := NewEventBridge(func(msg tea.Msg) { received = msg })

	at := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	bridge.now = func() time.Time { return at }

	evt := sse.Event{Type: sse.TypeBuildCompleted, Data: `{"build_id":"01X","duration_ms":42}`}
	bridge.Publish(evt)

	msg, ok := received.(BuildEventMsg)
	if !ok {
		t.Fatalf("received message is %T, want BuildEventMsg", received)
	}
	if msg.Event.Type != sse.TypeBuildCompleted {
		t.Errorf("Event.Type = %q, want %q", msg.Event.Type, sse.TypeBuildCompleted)
	}
	if msg.Event.Data != evt.Data {
		t.Errorf("Event.Data = %q, want %q", msg.Event.Data, evt.Data)
	}
	if !msg.At.Equal(at) {
		t.Errorf("At = %v, want %v", msg.At, at)
	}
}

func TestEventBridgePublishStampsArrival(t *testing.T) {
	var received tea.Msg
	bridge := NewEventBridge(func(msg tea.Msg) { received = msg })

	before := time.Now()
	bridge.Publish(sse.Event{Type: sse.TypeReload})
	after := time.Now()

	msg := received.(BuildEventMsg)
	if msg.At.Before(before) || msg.At.After(after) {
		t.Errorf("At = %v, want between %v and %v", msg.At, before, after)
	}
}
