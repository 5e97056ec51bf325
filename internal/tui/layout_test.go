package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/events"
	"github.com/nixlim/cc-scout/internal/session"
)

type mockSessionProvider struct {
	sessions         []session.SessionData
	totalSuggestions int
}

func (m *mockSessionProvider) GetSession(id string) *session.SessionData {
	for i := range m.sessions {
		if m.sessions[i].SessionID == id {
			cp := m.sessions[i]
			return &cp
		}
	}
	return nil
}

func (m *mockSessionProvider) ListSessions() []session.SessionData {
	return m.sessions
}

func (m *mockSessionProvider) TotalSuggestions() int {
	return m.totalSuggestions
}

type mockEventProvider struct {
	events []events.FormattedEvent
}

func (m *mockEventProvider) ListAll() []events.FormattedEvent {
	return m.events
}

func (m *mockEventProvider) ListBySession(sessionID string) []events.FormattedEvent {
	var result []events.FormattedEvent
	for _, e := range m.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

func (m *mockEventProvider) ListByKind(kind string) []events.FormattedEvent {
	var result []events.FormattedEvent
	for _, e := range m.events {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

func TestComputeDimensions_LargeTerminal(t *testing.T) {
	dims := computeDimensions(120, 40)

	if dims.sessionListW < 40 || dims.sessionListW > 60 {
		t.Errorf("sessionListW = %d, want ~48", dims.sessionListW)
	}

	if dims.suggestionsW < 50 {
		t.Errorf("suggestionsW = %d, want >= 50", dims.suggestionsW)
	}

	if dims.sessionListH <= 0 {
		t.Errorf("sessionListH = %d, want > 0", dims.sessionListH)
	}
	if dims.suggestionsH <= 0 {
		t.Errorf("suggestionsH = %d, want > 0", dims.suggestionsH)
	}
	if dims.eventStreamH <= 0 {
		t.Errorf("eventStreamH = %d, want > 0", dims.eventStreamH)
	}

	rightH := dims.suggestionsH + dims.eventStreamH
	if rightH != dims.sessionListH {
		t.Errorf("suggestionsH(%d) + eventStreamH(%d) = %d, want sessionListH = %d",
			dims.suggestionsH, dims.eventStreamH, rightH, dims.sessionListH)
	}
	totalH := dims.headerH + dims.sessionListH
	if totalH != 40 {
		t.Errorf("headerH(%d) + sessionListH(%d) = %d, want 40",
			dims.headerH, dims.sessionListH, totalH)
	}
}

func TestComputeDimensions_SmallTerminal(t *testing.T) {
	dims := computeDimensions(80, 24)

	if dims.sessionListW <= 0 {
		t.Errorf("sessionListW = %d, want > 0", dims.sessionListW)
	}
	if dims.suggestionsW <= 0 {
		t.Errorf("suggestionsW = %d, want > 0", dims.suggestionsW)
	}
}

func TestComputeDimensions_MinimumTerminal(t *testing.T) {
	dims := computeDimensions(20, 8)

	if dims.sessionListW <= 0 {
		t.Errorf("sessionListW = %d, want > 0", dims.sessionListW)
	}
	if dims.eventStreamH < 3 {
		t.Errorf("eventStreamH = %d, want >= 3", dims.eventStreamH)
	}
}

func TestModel_Init(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg)

	cmd := m.Init()
	if cmd == nil {
		t.Error("Init() returned nil cmd, want tick command")
	}
}

func TestModel_ViewDashboard(t *testing.T) {
	cfg := config.DefaultConfig()
	mockSessions := &mockSessionProvider{
		sessions: []session.SessionData{
			{
				SessionID:   "sess-001",
				StartedAt:   time.Now().Add(-30 * time.Minute),
				LastEventAt: time.Now(),
				ToolCalls:   12,
				GrepCalls:   4,
				ReadCalls:   3,
			},
		},
	}

	m := NewModel(cfg, WithSessionProvider(mockSessions))
	m.width = 120
	m.height = 40

	view := m.View()
	if !strings.Contains(view, "Sessions") {
		t.Error("dashboard view should contain 'Sessions' panel")
	}
	if !strings.Contains(view, "Suggestions") {
		t.Error("dashboard view should contain 'Suggestions' panel")
	}
	if !strings.Contains(view, "Feed") {
		t.Error("dashboard view should contain 'Feed' panel")
	}
}

func TestModel_QuitKey(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg)
	m.width = 120
	m.height = 40

	result, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m2 := result.(Model)
	if !m2.quitting {
		t.Error("after 'q', quitting should be true")
	}
	if cmd == nil {
		t.Error("after 'q', cmd should be non-nil (tea.Quit)")
	}
}

func TestModel_SessionNavigation(t *testing.T) {
	cfg := config.DefaultConfig()
	mockSessions := &mockSessionProvider{
		sessions: []session.SessionData{
			{SessionID: "sess-001", LastEventAt: time.Now()},
			{SessionID: "sess-002", LastEventAt: time.Now()},
			{SessionID: "sess-003", LastEventAt: time.Now()},
		},
	}

	m := NewModel(cfg, WithSessionProvider(mockSessions))
	m.width = 120
	m.height = 40

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m2 := result.(Model)
	if m2.sessionCursor != 1 {
		t.Errorf("after Down, sessionCursor = %d, want 1", m2.sessionCursor)
	}

	result, _ = m2.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m3 := result.(Model)
	if m3.selectedSession != "sess-002" {
		t.Errorf("after Enter, selectedSession = %q, want %q", m3.selectedSession, "sess-002")
	}

	result, _ = m3.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m4 := result.(Model)
	if m4.selectedSession != "" {
		t.Errorf("after Esc, selectedSession = %q, want empty", m4.selectedSession)
	}
}

func TestModel_CursorBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	mockSessions := &mockSessionProvider{
		sessions: []session.SessionData{
			{SessionID: "sess-001", LastEventAt: time.Now()},
			{SessionID: "sess-002", LastEventAt: time.Now()},
		},
	}

	m := NewModel(cfg, WithSessionProvider(mockSessions))
	m.width = 120
	m.height = 40

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m2 := result.(Model)
	if m2.sessionCursor != 0 {
		t.Errorf("after Up at 0, sessionCursor = %d, want 0", m2.sessionCursor)
	}

	result, _ = m2.Update(tea.KeyMsg{Type: tea.KeyDown})
	m3 := result.(Model)
	result, _ = m3.Update(tea.KeyMsg{Type: tea.KeyDown})
	m4 := result.(Model)
	if m4.sessionCursor != 1 {
		t.Errorf("after Down at end, sessionCursor = %d, want 1", m4.sessionCursor)
	}
}

func TestModel_WindowResize(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg)

	result, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	m2 := result.(Model)
	if m2.width != 100 {
		t.Errorf("width = %d, want 100", m2.width)
	}
	if m2.height != 50 {
		t.Errorf("height = %d, want 50", m2.height)
	}
}

func TestModel_SuggestionsOnlyToggle(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg)
	m.width = 120
	m.height = 40
	m.autoScroll = false

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m2 := result.(Model)
	if !m2.suggestionsOnly {
		t.Error("after 's', suggestionsOnly should be true")
	}
	if !m2.autoScroll {
		t.Error("after 's', autoScroll should be re-enabled")
	}

	result, _ = m2.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m3 := result.(Model)
	if m3.suggestionsOnly {
		t.Error("after second 's', suggestionsOnly should be false")
	}
}

func TestModel_ScrollKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	var evts []events.FormattedEvent
	for i := 0; i < 50; i++ {
		evts = append(evts, events.FormattedEvent{
			SessionID: "s1",
			Kind:      events.KindToolCall,
			Formatted: fmt.Sprintf("event %d", i),
			Timestamp: time.Now(),
		})
	}
	mockEvents := &mockEventProvider{events: evts}

	m := NewModel(cfg, WithEventProvider(mockEvents))
	m.width = 120
	m.height = 40
	m.eventScrollPos = 5

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	m2 := result.(Model)
	if m2.autoScroll {
		t.Error("after PgUp, autoScroll should be false")
	}
	if m2.eventScrollPos != 4 {
		t.Errorf("after PgUp, eventScrollPos = %d, want 4", m2.eventScrollPos)
	}

	result, _ = m2.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m3 := result.(Model)
	if m3.eventScrollPos != 5 {
		t.Errorf("after PgDown, eventScrollPos = %d, want 5", m3.eventScrollPos)
	}
}

func TestModel_ShutdownCallback(t *testing.T) {
	called := false
	cfg := config.DefaultConfig()
	m := NewModel(cfg, WithOnShutdown(func() { called = true }))
	m.width = 120
	m.height = 40

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !called {
		t.Error("onShutdown callback should have been called on quit")
	}
}

func TestModel_QuittingView(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewModel(cfg)
	m.quitting = true

	view := m.View()
	if !strings.Contains(view, "Shutting down") {
		t.Errorf("quitting view = %q, want to contain 'Shutting down'", view)
	}
}

func TestModel_ViewSmallDimensions(t *testing.T) {
	cfg := config.DefaultConfig()

	sizes := []struct {
		name   string
		width  int
		height int
	}{
		{"1x1", 1, 1},
		{"10x5", 10, 5},
		{"40x10", 40, 10},
	}

	mockSessions := &mockSessionProvider{
		sessions: []session.SessionData{
			{SessionID: "sess-001", LastEventAt: time.Now()},
		},
	}

	for _, sz := range sizes {
		t.Run(sz.name, func(t *testing.T) {
			m := NewModel(cfg, WithSessionProvider(mockSessions))
			m.width = sz.width
			m.height = sz.height
			_ = m.View()
		})
	}
}

func TestModel_ViewClampedToTerminalHeight(t *testing.T) {
	cfg := config.DefaultConfig()
	mockSessions := &mockSessionProvider{
		sessions: []session.SessionData{
			{SessionID: "sess-001", LastEventAt: time.Now(), ToolCalls: 5},
		},
	}

	sizes := []struct {
		name   string
		width  int
		height int
	}{
		{"small_15", 80, 15},
		{"small_12", 80, 12},
		{"minimum_10", 40, 10},
	}

	for _, sz := range sizes {
		t.Run(sz.name, func(t *testing.T) {
			m := NewModel(cfg, WithSessionProvider(mockSessions))
			m.width = sz.width
			m.height = sz.height

			view := m.View()
			lines := strings.Split(view, "\n")
			if len(lines) > sz.height {
				t.Errorf("View() output has %d lines, want at most %d", len(lines), sz.height)
			}

			if len(lines) > 0 && !strings.Contains(lines[0], "cc-scout") {
				t.Errorf("first line = %q, want to contain 'cc-scout'", lines[0])
			}
		})
	}
}

func TestRenderBorderedPanel_ClampsContent(t *testing.T) {
	tests := []struct {
		name        string
		contentRows int
		w, h        int
	}{
		{"content_fits", 4, 40, 8},
		{"content_overflows", 10, 40, 8},
		{"content_way_overflows", 20, 40, 8},
		{"small_panel", 5, 40, 4},
		{"tall_panel", 8, 60, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []string
			for i := 0; i < tt.contentRows; i++ {
				lines = append(lines, fmt.Sprintf("line %d content here", i))
			}
			content := strings.Join(lines, "\n")

			result := renderBorderedPanel(content, tt.w, tt.h)
			resultLines := strings.Split(result, "\n")

			if len(resultLines) != tt.h {
				t.Errorf("renderBorderedPanel() produced %d lines, want exactly %d",
					len(resultLines), tt.h)
			}
		})
	}
}

func TestNoPersistenceIndicator(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("no_persistence", func(t *testing.T) {
		m := NewModel(cfg, WithSessionProvider(&mockSessionProvider{}), WithPersistenceFlag(false))
		m.width = 120
		m.height = 40

		output := m.View()
		if !strings.Contains(output, "No persistence") {
			t.Error("view should contain 'No persistence' when isPersistent=false")
		}
	})

	t.Run("with_persistence", func(t *testing.T) {
		m := NewModel(cfg, WithSessionProvider(&mockSessionProvider{}), WithPersistenceFlag(true))
		m.width = 120
		m.height = 40

		output := m.View()
		if strings.Contains(output, "No persistence") {
			t.Error("view should NOT contain 'No persistence' when isPersistent=true")
		}
	})
}

func TestHeaderIndicators_SuggestionCount(t *testing.T) {
	cfg := config.DefaultConfig()
	mockSessions := &mockSessionProvider{totalSuggestions: 7}

	m := NewModel(cfg, WithSessionProvider(mockSessions), WithPersistenceFlag(true))
	m.width = 120
	m.height = 40

	output := m.View()
	if !strings.Contains(output, "[7 suggestions]") {
		t.Error("header should show total suggestion count")
	}
}

func TestTruncateID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		maxLen int
		want   string
	}{
		{"short", "abc", 8, "abc"},
		{"exact", "abcdefgh", 8, "abcdefgh"},
		{"long", "abcdefgh12345", 8, "abcdefgh"},
		{"empty", "", 8, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateID(tt.id, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateID(%q, %d) = %q, want %q", tt.id, tt.maxLen, got, tt.want)
			}
		})
	}
}
