// ABOUTME: Bubble Tea message types used in the dev dashboard message loop.
// ABOUTME: Wraps change-feed events for the tea.Msg interface (which is interface{}).
package tui

import (
	"time"

	"github.com/cfglab/flowviz/sse"
)

// BuildEventMsg wraps a change-feed event for the Bubble Tea message loop.
// At is when the event reached the dashboard, used as the log timestamp.
type BuildEventMsg struct {
	Event sse.Event
	At    time.Time
}
