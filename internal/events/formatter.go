// Package events provides formatting and buffering for the live feed of
// tool calls and suggestions shown in the dashboard.
package events

import (
	"fmt"
	"time"

	"github.com/nixlim/cc-scout/internal/detector"
)

// FormatToolCall converts a recorded tool call into a display-ready
// FormattedEvent:
//   - Grep/Glob: "[session] Grep "pattern" (N lines|items)"
//   - Read/Write/Edit: "[session] Read path/to/file"
//   - anything else: "[session] ToolName"
func FormatToolCall(sessionID string, c detector.ToolCall) FormattedEvent {
	fe := FormattedEvent{
		SessionID: sessionID,
		Kind:      KindToolCall,
		Timestamp: c.Time,
	}
	if fe.Timestamp.IsZero() {
		fe.Timestamp = time.Now()
	}

	shortSession := shortID(sessionID)
	name := c.Name
	if name == "" {
		name = c.Kind.String()
	}

	switch c.Kind {
	case detector.ToolGrep, detector.ToolGlob:
		fe.Formatted = fmt.Sprintf("[%s] %s %q%s", shortSession, name, c.Args["pattern"], formatResult(c.Result))
	case detector.ToolRead, detector.ToolWrite, detector.ToolEdit:
		path := c.Args["file_path"]
		if path == "" {
			path = c.Args["path"]
		}
		fe.Formatted = fmt.Sprintf("[%s] %s %s", shortSession, name, path)
	default:
		fe.Formatted = fmt.Sprintf("[%s] %s", shortSession, name)
	}

	return fe
}

// FormatSuggestion converts a fired suggestion into a display-ready
// FormattedEvent: "[session] >> trigger (confidence): query (save est)".
func FormatSuggestion(sessionID string, s detector.Suggestion, at time.Time) FormattedEvent {
	fe := FormattedEvent{
		SessionID: sessionID,
		Kind:      KindSuggestion,
		Timestamp: at,
		Trigger:   string(s.Trigger),
	}
	if fe.Timestamp.IsZero() {
		fe.Timestamp = time.Now()
	}

	fe.Formatted = fmt.Sprintf("[%s] >> %s (%s): %s (save %s)",
		shortID(sessionID),
		s.Trigger,
		s.Confidence,
		s.SuggestedQuery,
		s.EstimatedSavings,
	)
	return fe
}

// formatResult renders the result suffix for search-style tools.
func formatResult(r detector.Result) string {
	if !r.Present() {
		return ""
	}
	if n := r.ItemCount(); n > 0 || r.Text() == "" {
		return fmt.Sprintf(" (%d items)", n)
	}
	return fmt.Sprintf(" (~%d tokens)", EstimateTokens(r.Text()))
}

// shortID returns a shortened session ID for display, truncated to 12
// characters.
func shortID(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
