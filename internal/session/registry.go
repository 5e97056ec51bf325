// Package session indexes observed tool calls by session ID and runs a
// per-session pattern detector over each session's call stream.
package session

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/nixlim/cc-scout/internal/detector"
)

// ToolCallListener is a callback invoked after a tool call is recorded.
// Listeners are called outside the registry lock and must not call back
// into the registry in a way that acquires a write lock.
type ToolCallListener func(sessionID string, c detector.ToolCall)

// SuggestionListener is a callback invoked after a detection fires.
type SuggestionListener func(sessionID string, s detector.Suggestion)

// Registry is a thread-safe map of session ID to session state, each
// with its own detector so one chatty session cannot trigger
// suggestions on behalf of another.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	overlay      map[string]float64
	detectorOpts []detector.Option
	now          func() time.Time

	callListeners       []ToolCallListener
	suggestionListeners []SuggestionListener
}

type entry struct {
	data SessionData
	det  *detector.Detector
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithNow replaces the wall clock used to stamp recorded calls.
func WithNow(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// WithDetectorOptions passes options through to every per-session
// detector the registry creates.
func WithDetectorOptions(opts ...detector.Option) RegistryOption {
	return func(r *Registry) {
		r.detectorOpts = opts
	}
}

// NewRegistry creates an empty registry. The overlay is applied on top
// of the default detection thresholds for every session.
func NewRegistry(overlay map[string]float64, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*entry),
		overlay:  overlay,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnToolCall registers a listener that is called after every Observe.
// Listeners are invoked synchronously outside the registry lock.
func (r *Registry) OnToolCall(fn ToolCallListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callListeners = append(r.callListeners, fn)
}

// OnSuggestion registers a listener that is called whenever a detection
// fires. Listeners are invoked synchronously outside the registry lock.
func (r *Registry) OnSuggestion(fn SuggestionListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestionListeners = append(r.suggestionListeners, fn)
}

// resolveSessionID returns the provided sessionID if non-empty, or
// UnknownSessionID with a warning log if empty.
func resolveSessionID(sessionID string) string {
	if sessionID == "" {
		log.Printf("WARNING: tool call received without session.id, storing under %q", UnknownSessionID)
		return UnknownSessionID
	}
	return sessionID
}

// getOrCreate returns the existing session entry or creates a new one.
// Caller must hold r.mu (write lock).
func (r *Registry) getOrCreate(sessionID string) *entry {
	e, ok := r.sessions[sessionID]
	if !ok {
		e = &entry{
			data: SessionData{
				SessionID: sessionID,
				StartedAt: r.now(),
			},
			det: detector.New(r.overlay, r.detectorOpts...),
		}
		r.sessions[sessionID] = e
	}
	return e
}

// Observe records one tool call under the given session, runs the
// session's detector, and returns the suggestion if one fired.
func (r *Registry) Observe(sessionID, toolName string, args map[string]string, result detector.Result) *detector.Suggestion {
	sessionID = resolveSessionID(sessionID)

	r.mu.Lock()

	e := r.getOrCreate(sessionID)
	e.data.ToolCalls++
	e.data.LastEventAt = r.now()

	kind := detector.ParseToolKind(toolName)
	switch kind {
	case detector.ToolGrep:
		e.data.GrepCalls++
	case detector.ToolGlob:
		e.data.GlobCalls++
	case detector.ToolRead:
		e.data.ReadCalls++
	case detector.ToolWrite:
		e.data.WriteCalls++
	case detector.ToolEdit:
		e.data.EditCalls++
	default:
		e.data.OtherCalls++
	}

	suggestion := e.det.OnToolCall(toolName, args, result)
	if suggestion != nil {
		e.data.Suggestions = append(e.data.Suggestions, *suggestion)
	}

	call := detector.ToolCall{
		Time:   e.data.LastEventAt,
		Kind:   kind,
		Name:   toolName,
		Args:   args,
		Result: result,
	}

	// Snapshot listeners while holding the lock.
	callListeners := r.callListeners
	suggestionListeners := r.suggestionListeners

	r.mu.Unlock()

	// Notify listeners outside the lock to prevent deadlocks.
	for _, fn := range callListeners {
		fn(sessionID, call)
	}
	if suggestion != nil {
		for _, fn := range suggestionListeners {
			fn(sessionID, *suggestion)
		}
	}

	return suggestion
}

// GetSession returns a deep copy of the session data for the given ID,
// or nil if the session does not exist.
func (r *Registry) GetSession(sessionID string) *SessionData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	return copySession(&e.data)
}

// ListSessions returns a snapshot of all sessions sorted by start time
// (oldest first).
func (r *Registry) ListSessions() []SessionData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SessionData, 0, len(r.sessions))
	for _, e := range r.sessions {
		result = append(result, *copySession(&e.data))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

// TotalSuggestions returns the number of suggestions fired across all
// sessions.
func (r *Registry) TotalSuggestions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int
	for _, e := range r.sessions {
		total += len(e.data.Suggestions)
	}
	return total
}

// Reset clears the detector history and tallies for the given session.
// The session itself remains registered.
func (r *Registry) Reset(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	e.det.Reset()
	e.data = SessionData{
		SessionID: sessionID,
		StartedAt: e.data.StartedAt,
	}
}

// copySession returns a deep copy of a SessionData to prevent callers
// from mutating internal state.
func copySession(s *SessionData) *SessionData {
	cp := *s
	if len(s.Suggestions) > 0 {
		cp.Suggestions = make([]detector.Suggestion, len(s.Suggestions))
		copy(cp.Suggestions, s.Suggestions)
	}
	return &cp
}
