package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nixlim/cc-scout/internal/detector"
)

// Logger provides structured debug logging for the OTLP receiver.
// Implementations must be safe for concurrent use.
type Logger interface {
	// LogToolCall logs a received tool-result event with its session ID
	// and decoded parameters.
	LogToolCall(sessionID, toolName string, args map[string]string)

	// LogSuggestion logs a detection fired while processing an export.
	LogSuggestion(sessionID string, s detector.Suggestion)
}

// NopLogger discards all log output. This is the default when debug
// logging is not enabled, and has zero allocation overhead.
type NopLogger struct{}

// LogToolCall is a no-op.
func (NopLogger) LogToolCall(string, string, map[string]string) {}

// LogSuggestion is a no-op.
func (NopLogger) LogSuggestion(string, detector.Suggestion) {}

// logEntry is the JSON structure written by FileLogger.
type logEntry struct {
	Timestamp  string            `json:"ts"`
	Type       string            `json:"type"`
	SessionID  string            `json:"session"`
	Tool       string            `json:"tool,omitempty"`
	Args       map[string]string `json:"args,omitempty"`
	Trigger    string            `json:"trigger,omitempty"`
	Confidence string            `json:"confidence,omitempty"`
	Query      string            `json:"query,omitempty"`
}

// FileLogger writes structured JSON debug output to an io.Writer.
// Each line is a complete JSON object (JSONL format).
type FileLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to the given writer.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w}
}

// LogToolCall writes a JSON line for a received tool-result event.
func (l *FileLogger) LogToolCall(sessionID, toolName string, args map[string]string) {
	l.write(logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      "tool_call",
		SessionID: sessionID,
		Tool:      toolName,
		Args:      args,
	})
}

// LogSuggestion writes a JSON line for a fired detection.
func (l *FileLogger) LogSuggestion(sessionID string, s detector.Suggestion) {
	l.write(logEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Type:       "suggestion",
		SessionID:  sessionID,
		Trigger:    string(s.Trigger),
		Confidence: string(s.Confidence),
		Query:      s.SuggestedQuery,
	})
}

// write serialises a logEntry as JSON and writes it as a single line.
// Serialisation errors are silently dropped to avoid disrupting the
// receiver.
func (l *FileLogger) write(entry logEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
