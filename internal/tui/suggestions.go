package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/cc-scout/internal/events"
)

// renderSuggestionsPanel renders the most recent suggestions, newest at
// the bottom. When a session is selected only its suggestions show.
func (m Model) renderSuggestionsPanel(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}
	contentH := h - 4 // borders + title
	if contentH < 1 {
		contentH = 1
	}

	var lines []string
	lines = append(lines, panelTitleStyle.Render("Suggestions"))

	suggestions := m.getSuggestionEvents()
	if len(suggestions) == 0 {
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("No suggestions yet"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
	}

	visible := contentH - 1
	if visible < 1 {
		visible = 1
	}
	start := len(suggestions) - visible
	if start < 0 {
		start = 0
	}

	for _, e := range suggestions[start:] {
		lines = append(lines, renderSuggestionLine(e, contentW))
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
}

func (m Model) getSuggestionEvents() []events.FormattedEvent {
	if m.events == nil {
		return nil
	}
	all := m.events.ListByKind(events.KindSuggestion)
	if m.selectedSession == "" {
		return all
	}
	var filtered []events.FormattedEvent
	for _, e := range all {
		if e.SessionID == m.selectedSession {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// triggerStyles grade suggestion lines by how confident the detection
// usually is.
var triggerStyles = map[string]lipgloss.Style{
	"multiple_searches":   suggestionHighStyle,
	"exploratory_reading": suggestionHighStyle,
	"broad_glob":          suggestionMediumStyle,
	"noisy_grep":          suggestionLowStyle,
}

func renderSuggestionLine(e events.FormattedEvent, maxW int) string {
	style, ok := triggerStyles[e.Trigger]
	if !ok {
		style = dimStyle
	}

	formatted := e.Formatted
	if len(formatted) > maxW && maxW > 3 {
		formatted = formatted[:maxW-3] + "..."
	}
	return style.Render(formatted)
}
