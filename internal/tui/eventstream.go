package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/cc-scout/internal/events"
)

// eventKindIcons maps feed entry kinds to their display icons.
var eventKindIcons = map[string]string{
	events.KindToolCall:   "T:",
	events.KindSuggestion: ">>",
}

// eventKindStyles maps feed entry kinds to their display styles.
var eventKindStyles = map[string]lipgloss.Style{
	events.KindToolCall:   toolCallStyle,
	events.KindSuggestion: suggestionMediumStyle,
}

// renderEventStreamPanel renders the scrolling feed of tool calls and
// suggestions.
func (m Model) renderEventStreamPanel(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}
	contentH := h - 4 // borders + title
	if contentH < 1 {
		contentH = 1
	}

	var lines []string

	title := panelTitleStyle.Render("Feed")
	if m.suggestionsOnly {
		title += dimStyle.Render(" [suggestions]")
	}
	if m.selectedSession != "" {
		title += dimStyle.Render(" [" + truncateID(m.selectedSession, 8) + "]")
	}
	lines = append(lines, title)

	evts := m.getFeedEvents()

	if len(evts) == 0 {
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("No data received yet"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
	}

	visibleLines := contentH - 1 // subtract title line
	if visibleLines < 1 {
		visibleLines = 1
	}

	// Auto-scroll pins the view to the most recent events.
	startIdx := 0
	if m.autoScroll {
		startIdx = len(evts) - visibleLines
		if startIdx < 0 {
			startIdx = 0
		}
	} else {
		startIdx = m.eventScrollPos
		if startIdx > len(evts)-visibleLines {
			startIdx = len(evts) - visibleLines
		}
		if startIdx < 0 {
			startIdx = 0
		}
	}

	endIdx := startIdx + visibleLines
	if endIdx > len(evts) {
		endIdx = len(evts)
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, renderEventLine(evts[i], contentW))
	}

	if len(evts) > visibleLines {
		pad := contentW - 20
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, dimStyle.Render(
			strings.Repeat(" ", pad)+formatScrollPos(startIdx+1, endIdx, len(evts))))
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
}

// getFeedEvents returns the feed entries matching the current filters.
func (m Model) getFeedEvents() []events.FormattedEvent {
	if m.events == nil {
		return nil
	}

	var evts []events.FormattedEvent
	if m.selectedSession != "" {
		evts = m.events.ListBySession(m.selectedSession)
	} else {
		evts = m.events.ListAll()
	}

	if !m.suggestionsOnly {
		return evts
	}

	var filtered []events.FormattedEvent
	for _, e := range evts {
		if e.Kind == events.KindSuggestion {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// renderEventLine formats a single feed entry for display.
func renderEventLine(e events.FormattedEvent, maxW int) string {
	icon := eventKindIcons[e.Kind]
	if icon == "" {
		icon = "??"
	}

	style, ok := eventKindStyles[e.Kind]
	if !ok {
		style = dimStyle
	}

	formatted := e.Formatted
	maxFormatted := maxW - len(icon) - 1
	if len(formatted) > maxFormatted && maxFormatted > 3 {
		formatted = formatted[:maxFormatted-3] + "..."
	}

	return style.Render(icon + " " + formatted)
}

// formatScrollPos returns a string like "[10-20/100]".
func formatScrollPos(start, end, total int) string {
	return fmt.Sprintf("[%d-%d/%d]", start, end, total)
}
