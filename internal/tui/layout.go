package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type panelDimensions struct {
	sessionListW, sessionListH int
	suggestionsW, suggestionsH int
	eventStreamW, eventStreamH int
	headerH                    int
}

const (
	minWidth  = 40
	minHeight = 10

	headerHeight = 1

	suggestionsMinHeight = 6
	suggestionsMaxHeight = 12
)

func computeDimensions(totalW, totalH int) panelDimensions {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}

	d := panelDimensions{
		headerH: headerHeight,
	}

	usableH := totalH - headerHeight
	if usableH < 4 {
		usableH = 4
	}

	d.sessionListW = totalW * 40 / 100
	if d.sessionListW < 20 {
		d.sessionListW = 20
	}
	if d.sessionListW > totalW-20 {
		d.sessionListW = totalW - 20
	}
	d.sessionListH = usableH

	rightW := totalW - d.sessionListW
	if rightW < 20 {
		rightW = 20
	}

	d.suggestionsW = rightW
	sh := usableH * 40 / 100
	if sh < suggestionsMinHeight {
		sh = suggestionsMinHeight
	}
	if sh > suggestionsMaxHeight {
		sh = suggestionsMaxHeight
	}
	if sh > usableH/2 {
		sh = usableH / 2
	}
	d.suggestionsH = sh

	d.eventStreamW = rightW
	d.eventStreamH = usableH - d.suggestionsH
	if d.eventStreamH < 3 {
		d.eventStreamH = 3
	}

	return d
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	suggestionHighStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	suggestionMediumStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	suggestionLowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	toolCallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222"))
)

func renderBorderedPanel(content string, w, h int) string {
	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentH {
		lines = lines[:contentH]
		content = strings.Join(lines, "\n")
	}

	return panelBorderStyle.
		Width(w - 2).
		Height(contentH).
		Render(content)
}

func (m Model) renderDashboard() string {
	dims := computeDimensions(m.width, m.height)

	header := m.renderHeader()

	sessionList := m.renderSessionListPanel(dims.sessionListW, dims.sessionListH)
	suggestions := m.renderSuggestionsPanel(dims.suggestionsW, dims.suggestionsH)
	eventStream := m.renderEventStreamPanel(dims.eventStreamW, dims.eventStreamH)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, suggestions, eventStream)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sessionList, rightCol)

	usableH := m.height - dims.headerH
	if usableH < 4 {
		usableH = 4
	}
	mcLines := strings.Split(mainContent, "\n")
	if len(mcLines) > usableH {
		mcLines = mcLines[:usableH]
		mainContent = strings.Join(mcLines, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent)
}

func (m Model) renderHeader() string {
	title := " cc-scout"
	viewLabel := ""
	if m.selectedSession != "" {
		viewLabel = " Session: " + truncateID(m.selectedSession, 8)
	} else {
		viewLabel = " All sessions"
	}

	indicators := m.headerIndicators()
	help := " ↑/↓:Select  Enter:Focus  Esc:All  s:Suggestions  q:Quit "

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(viewLabel) - lipgloss.Width(indicators) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + viewLabel + indicators + strings.Repeat(" ", padding) + help)
}

func (m Model) headerIndicators() string {
	var parts []string
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if m.sessions != nil {
		if n := m.sessions.TotalSuggestions(); n > 0 {
			parts = append(parts, fmt.Sprintf("[%d suggestions]", n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func truncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}
