// ABOUTME: Defines lipgloss style constants for the dev dashboard panels and log formatting.
// ABOUTME: Provides StyleForEvent to map change-feed event types to their display styles.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cfglab/flowviz/sse"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Build states
	BuildingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	OKStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	FailedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Log event colors
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogEventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	LogSuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	LogReloadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("177"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Spinner shown while a build runs
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Bottom key hint line
	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForEvent returns the appropriate lipgloss style for a change-feed
// event type.
func StyleForEvent(eventType string) lipgloss.Style {
	switch eventType {
	case sse.TypeBuildStarted:
		return LogEventStyle
	case sse.TypeBuildCompleted:
		return LogSuccessStyle
	case sse.TypeBuildFailed, sse.TypeWatchError:
		return LogErrorStyle
	case sse.TypeReload:
		return LogReloadStyle
	default:
		return LogEventStyle
	}
}
