// Package tui renders the live dashboard: a session list, the
// suggestion panel, and the scrolling tool-call feed.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/events"
	"github.com/nixlim/cc-scout/internal/session"
)

type tickMsg time.Time

// SessionProvider exposes the registry's session snapshots.
type SessionProvider interface {
	GetSession(sessionID string) *session.SessionData
	ListSessions() []session.SessionData
	TotalSuggestions() int
}

// EventProvider exposes the formatted feed buffer.
type EventProvider interface {
	ListAll() []events.FormattedEvent
	ListBySession(sessionID string) []events.FormattedEvent
	ListByKind(kind string) []events.FormattedEvent
}

type Model struct {
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	sessions SessionProvider
	events   EventProvider

	selectedSession string
	sessionCursor   int

	eventScrollPos  int
	autoScroll      bool
	suggestionsOnly bool

	isPersistent bool
	refreshRate  time.Duration

	onShutdown func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		autoScroll:  true,
		refreshRate: time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

type ModelOption func(*Model)

func WithSessionProvider(s SessionProvider) ModelOption {
	return func(m *Model) { m.sessions = s }
}

func WithEventProvider(e EventProvider) ModelOption {
	return func(m *Model) { m.events = e }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Panels pull fresh snapshots on render; the tick only forces a
		// redraw.
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.sessionCursor < len(m.getSessions())-1 {
			m.sessionCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		sessions := m.getSessions()
		if m.sessionCursor >= 0 && m.sessionCursor < len(sessions) {
			m.selectedSession = sessions[m.sessionCursor].SessionID
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.selectedSession = ""
		return m, nil

	case key.Matches(msg, m.keys.Suggest):
		m.suggestionsOnly = !m.suggestionsOnly
		m.autoScroll = true
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.autoScroll = false
		if m.eventScrollPos > 0 {
			m.eventScrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.eventScrollPos++
		return m, nil
	}

	return m, nil
}

func (m Model) getSessions() []session.SessionData {
	if m.sessions == nil {
		return nil
	}
	return m.sessions.ListSessions()
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	output := m.renderDashboard()

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}
