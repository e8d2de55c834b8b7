// ABOUTME: Implements a scrollable build event log using the bubbles viewport component.
// ABOUTME: Displays change-feed events with color-coded types and compact key=value payloads.
package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfglab/flowviz/sse"
)

// logEntry is one received event with its arrival time.
type logEntry struct {
	at  time.Time
	evt sse.Event
}

// LogModel is a scrollable log of the dev session's change-feed events.
type LogModel struct {
	entries  []logEntry
	max      int
	viewport viewport.Model
	width    int
	height   int
}

// NewLogModel creates a new log panel with a maximum number of entries.
// If maxEntries is <= 0, it defaults to 200.
func NewLogModel(maxEntries int) LogModel {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	vp := viewport.New(80, 10)
	return LogModel{
		entries:  make([]logEntry, 0, maxEntries),
		max:      maxEntries,
		viewport: vp,
	}
}

// Append adds an event to the log, evicting the oldest entry if at capacity.
func (m *LogModel) Append(at time.Time, evt sse.Event) {
	if len(m.entries) >= m.max {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, logEntry{at: at, evt: evt})
	m.syncViewport()
}

// Len returns the number of entries in the log.
func (m LogModel) Len() int {
	return len(m.entries)
}

// Clear removes all entries.
func (m *LogModel) Clear() {
	m.entries = m.entries[:0]
	m.syncViewport()
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LogModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.syncViewport()
}

// GotoTop scrolls the log to the oldest entry.
func (m *LogModel) GotoTop() {
	m.viewport.GotoTop()
}

// GotoBottom scrolls the log to the newest entry.
func (m *LogModel) GotoBottom() {
	m.viewport.GotoBottom()
}

// Update forwards scrolling keys (arrows, page up/down) to the viewport.
func (m LogModel) Update(msg tea.Msg) (LogModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the log panel inside its border.
func (m LogModel) View() string {
	var content string
	if len(m.entries) == 0 {
		content = "No events yet"
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render("EVENTS") + "\n" + content

	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

// syncViewport rebuilds the viewport content from entries and scrolls to the bottom.
func (m *LogModel) syncViewport() {
	if len(m.entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	var lines []string
	for _, entry := range m.entries {
		lines = append(lines, formatEntry(entry))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// formatEntry formats a single event as a log line.
func formatEntry(entry logEntry) string {
	ts := LogTimestampStyle.Render(entry.at.Format("15:04:05"))
	evtType := StyleForEvent(entry.evt.Type).Render(entry.evt.Type)

	parts := []string{ts, evtType}
	if data := formatEventData(entry.evt.Data); data != "" {
		parts = append(parts, data)
	}
	return strings.Join(parts, " ")
}

// formatEventData renders an event's JSON payload as compact sorted key=value
// pairs. Non-JSON payloads are passed through untouched.
func formatEventData(data string) string {
	if data == "" {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return data
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(pairs, " ")
}
