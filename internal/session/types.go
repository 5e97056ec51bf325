package session

import (
	"time"

	"github.com/nixlim/cc-scout/internal/detector"
)

const UnknownSessionID = "unknown"

// SessionData is the per-session view exposed to the dashboard and
// storage layers. Counters are derived from the observed tool calls.
type SessionData struct {
	SessionID   string
	StartedAt   time.Time
	LastEventAt time.Time

	ToolCalls  int
	GrepCalls  int
	GlobCalls  int
	ReadCalls  int
	WriteCalls int
	EditCalls  int
	OtherCalls int

	Suggestions []detector.Suggestion
}

type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusIdle   SessionStatus = "idle"
	StatusDone   SessionStatus = "done"
)

func (s *SessionData) Status() SessionStatus {
	if s.LastEventAt.IsZero() {
		return StatusDone
	}
	elapsed := time.Since(s.LastEventAt)
	switch {
	case elapsed <= 30*time.Second:
		return StatusActive
	case elapsed <= 5*time.Minute:
		return StatusIdle
	default:
		return StatusDone
	}
}
