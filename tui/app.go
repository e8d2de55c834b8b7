// ABOUTME: Top-level Bubble Tea model for the flowviz dev dashboard (flowviz dev -tui).
// ABOUTME: Composes the status bar and event log, tracks build state, and handles key bindings.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfglab/flowviz/sse"
)

// Kicker requests an immediate rebuild. The dev loop satisfies it.
type Kicker interface {
	Kick()
}

// Options configures the dashboard.
type Options struct {
	Addr       string             // dev server listen address, e.g. "127.0.0.1:8080"
	Roots      []string           // watched source roots
	Extensions []string           // watched file extensions
	Kicker     Kicker             // receives manual rebuild requests ('b'), may be nil
	Cancel     context.CancelFunc // cancels the dev session on quit, may be nil
	MaxLog     int                // event log capacity, default 200
}

// AppModel is the top-level Bubble Tea model for the dev dashboard.
type AppModel struct {
	statusBar StatusBarModel
	log       LogModel
	spinner   spinner.Model

	kicker Kicker
	cancel context.CancelFunc

	building bool
	okBuilds int
	failed   int
	width    int
	height   int
}

// NewAppModel creates the dashboard model. The session clock starts now.
func NewAppModel(opts Options) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := AppModel{
		statusBar: NewStatusBarModel(opts.Addr, opts.Roots, opts.Extensions),
		log:       NewLogModel(opts.MaxLog),
		spinner:   sp,
		kicker:    opts.Kicker,
		cancel:    opts.Cancel,
	}
	m.statusBar.Start()
	return m
}

// Init implements tea.Model. Events arrive via the EventBridge's program.Send,
// so there is nothing to start here.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Routes incoming messages to the appropriate
// handler and returns the updated model with any follow-up commands.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case BuildEventMsg:
		return m.handleBuildEvent(msg)

	case spinner.TickMsg:
		if !m.building {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View implements tea.Model. Renders the event log above the status bar and
// key hint line.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 40 || m.height < 8 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x8.", m.width, m.height)
	}

	logHeight := m.height - 2
	m.log.SetSize(m.width, logHeight)
	m.statusBar.SetWidth(m.width)

	statusView := m.statusBar.View()
	if m.building {
		statusView += " " + m.spinner.View() + BuildingStyle.Render("building")
	}

	var b strings.Builder
	b.WriteString(m.log.View())
	b.WriteString("\n")
	b.WriteString(statusView)
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("q quit  b rebuild  c clear  g/G top/bottom"))
	return b.String()
}

// Building reports whether a build is currently in flight.
func (m AppModel) Building() bool {
	return m.building
}

// Counts returns the ok/failed build totals observed this session.
func (m AppModel) Counts() (ok, failed int) {
	return m.okBuilds, m.failed
}

// handleBuildEvent appends the event to the log and updates build state.
func (m AppModel) handleBuildEvent(msg BuildEventMsg) (tea.Model, tea.Cmd) {
	m.log.Append(msg.At, msg.Event)

	switch msg.Event.Type {
	case sse.TypeBuildStarted:
		wasBuilding := m.building
		m.building = true
		if !wasBuilding {
			return m, m.spinner.Tick
		}

	case sse.TypeBuildCompleted:
		m.building = false
		m.okBuilds++
		m.statusBar.SetCounts(m.okBuilds, m.failed)

	case sse.TypeBuildFailed:
		m.building = false
		m.failed++
		m.statusBar.SetCounts(m.okBuilds, m.failed)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input. Unhandled keys scroll the log.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		// Quitting the dashboard ends the whole dev session.
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "b":
		if m.kicker != nil {
			m.kicker.Kick()
		}
		return m, nil
	case "c":
		m.log.Clear()
		return m, nil
	case "g":
		m.log.GotoTop()
		return m, nil
	case "G":
		m.log.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}
