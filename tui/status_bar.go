// ABOUTME: Implements a single-line status bar for the dev dashboard.
// ABOUTME: Shows the server address, watch targets, session elapsed time, and build counts.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusBarModel displays the dev session state in a single line.
type StatusBarModel struct {
	addr       string
	roots      []string
	extensions []string
	startTime  time.Time
	okBuilds   int
	failed     int
	width      int
}

// NewStatusBarModel creates a StatusBarModel for the given server address and
// watch targets.
func NewStatusBarModel(addr string, roots, extensions []string) StatusBarModel {
	return StatusBarModel{
		addr:       addr,
		roots:      roots,
		extensions: extensions,
	}
}

// Start records the session start time.
func (m *StatusBarModel) Start() {
	m.startTime = time.Now()
}

// SetCounts updates the ok/failed build counters.
func (m *StatusBarModel) SetCounts(ok, failed int) {
	m.okBuilds = ok
	m.failed = failed
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Elapsed returns the time since Start() was called, or zero if not started.
func (m StatusBarModel) Elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	return time.Since(m.startTime)
}

// formatElapsed formats a duration as a human-readable string.
// Durations under a minute show as seconds (e.g. "12s").
// Durations of a minute or more show as minutes and seconds (e.g. "2m30s").
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	watching := strings.Join(m.roots, ",")
	if len(m.extensions) > 0 {
		watching += " (" + strings.Join(m.extensions, ",") + ")"
	}

	content := fmt.Sprintf("flowviz dev | http://%s | Watching: %s | Elapsed: %s | Builds: %d ok / %d failed",
		m.addr, watching, formatElapsed(m.Elapsed()), m.okBuilds, m.failed)

	style := StatusBarStyle.Width(m.width)

	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
