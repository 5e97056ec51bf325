package events

import "time"

// Feed entry kinds.
const (
	KindToolCall   = "tool_call"
	KindSuggestion = "suggestion"
)

// FormattedEvent holds a display-ready feed entry with metadata.
type FormattedEvent struct {
	SessionID string
	Kind      string // tool_call, suggestion
	Formatted string // display-ready string
	Timestamp time.Time
	Trigger   string // suggestion trigger name, empty for tool calls
}
