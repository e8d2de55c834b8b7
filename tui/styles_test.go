// ABOUTME: Tests for lipgloss style definitions and the StyleForEvent helper.
// ABOUTME: Validates style variables are initialized and event-style mapping is correct.
package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/cfglab/flowviz/sse"
)

func TestStyleForEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		wantSame lipgloss.Style
	}{
		{"started", sse.TypeBuildStarted, LogEventStyle},
		{"completed", sse.TypeBuildCompleted, LogSuccessStyle},
		{"failed", sse.TypeBuildFailed, LogErrorStyle},
		{"watch error", sse.TypeWatchError, LogErrorStyle},
		{"reload", sse.TypeReload, LogReloadStyle},
		{"unknown falls back", "something.else", LogEventStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StyleForEvent(tt.event).Render("test")
			want := tt.wantSame.Render("test")
			if got != want {
				t.Errorf("StyleForEvent(%q) rendered %q, want %q", tt.event, got, want)
			}
		})
	}
}

func TestStyleVariablesInitialized(t *testing.T) {
	// Inspect getter methods instead of ANSI output, which lipgloss
	// suppresses in non-TTY environments.
	hasForeground := func(s lipgloss.Style) bool { return s.GetForeground() != nil }
	hasBold := func(s lipgloss.Style) bool { return s.GetBold() }
	hasBorder := func(s lipgloss.Style) bool {
		_, top, right, bottom, left := s.GetBorder()
		return top || right || bottom || left
	}
	hasBackground := func(s lipgloss.Style) bool { return s.GetBackground() != nil }

	checks := []struct {
		name  string
		style lipgloss.Style
		check func(lipgloss.Style) bool
	}{
		{"BorderStyle", BorderStyle, hasBorder},
		{"TitleStyle", TitleStyle, hasBold},
		{"BuildingStyle", BuildingStyle, hasBold},
		{"OKStyle", OKStyle, hasForeground},
		{"FailedStyle", FailedStyle, hasBold},
		{"LogTimestampStyle", LogTimestampStyle, hasForeground},
		{"LogEventStyle", LogEventStyle, hasForeground},
		{"LogErrorStyle", LogErrorStyle, hasForeground},
		{"LogSuccessStyle", LogSuccessStyle, hasForeground},
		{"LogReloadStyle", LogReloadStyle, hasForeground},
		{"StatusBarStyle", StatusBarStyle, hasBackground},
		{"SpinnerStyle", SpinnerStyle, hasForeground},
		{"HelpStyle", HelpStyle, hasForeground},
	}

	for _, tc := range checks {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.style) {
				t.Errorf("%s failed its property check; style may not be initialized", tc.name)
			}
		})
	}
}
