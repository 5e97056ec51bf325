package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nixlim/cc-scout/internal/session"
)

// renderSessionListPanel renders the session list with per-session call
// tallies and suggestion counts.
func (m Model) renderSessionListPanel(w, h int) string {
	sessions := m.getSessions()

	contentW := w - 4
	if contentW < 16 {
		contentW = 16
	}

	contentH := h - 4 // borders + title
	if contentH < 2 {
		contentH = 2
	}

	var lines []string

	title := panelTitleStyle.Render("Sessions")
	if m.selectedSession != "" {
		title += dimStyle.Render(" [" + truncateID(m.selectedSession, 8) + "]")
	} else {
		title += dimStyle.Render(" [all]")
	}
	lines = append(lines, title)

	if len(sessions) == 0 {
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("No sessions yet"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
	}

	header := formatSessionHeader(contentW)
	lines = append(lines, dimStyle.Render(header))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", min(contentW, len(header)))))

	for i, s := range sessions {
		line := formatSessionRow(&s, contentW)
		if i == m.sessionCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if len(lines) > contentH {
		lines = lines[:contentH]
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
}

// formatSessionHeader returns the column header string.
func formatSessionHeader(maxW int) string {
	if maxW >= 60 {
		return fmt.Sprintf("%-8s %-9s %-6s %5s %5s %5s %5s",
			"Session", "Started", "Status", "Calls", "Grep", "Read", "Sugg")
	}
	return fmt.Sprintf("%-8s %-6s %5s %5s",
		"Session", "Status", "Calls", "Sugg")
}

// formatSessionRow formats a single session row based on available width.
func formatSessionRow(s *session.SessionData, maxW int) string {
	sessionID := truncateID(s.SessionID, 8)
	started := formatStartedAt(s.StartedAt)
	statusStr := renderStatus(s.Status())
	searches := s.GrepCalls + s.GlobCalls

	if maxW >= 60 {
		return fmt.Sprintf("%-8s %-9s %-6s %5d %5d %5d %5d",
			sessionID, started, statusStr, s.ToolCalls, searches, s.ReadCalls, len(s.Suggestions))
	}
	return fmt.Sprintf("%-8s %-6s %5d %5d",
		sessionID, statusStr, s.ToolCalls, len(s.Suggestions))
}

// formatStartedAt formats a timestamp as DDMM HHMM.
func formatStartedAt(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("0201 1504")
}

// renderStatus returns a styled string for the session status.
func renderStatus(s session.SessionStatus) string {
	switch s {
	case session.StatusActive:
		return activeStyle.Render("active")
	case session.StatusIdle:
		return idleStyle.Render("idle")
	case session.StatusDone:
		return doneStyle.Render("done")
	default:
		return string(s)
	}
}

// min returns the smaller of two ints.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
