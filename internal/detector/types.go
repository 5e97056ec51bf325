// Package detector watches the stream of tool calls a Claude Code session
// produces and decides when broad, token-expensive exploration should be
// offloaded to a cheaper background agent. All inference is done on call
// metadata (tool names, argument strings, result sizes), never on the
// content of files or search results.
package detector

import "time"

// ToolKind classifies a tool call into the small set of kinds the
// pattern rules care about. Anything else is ToolOther.
type ToolKind int

const (
	ToolOther ToolKind = iota
	ToolGrep
	ToolGlob
	ToolRead
	ToolWrite
	ToolEdit
)

// String returns the canonical tool name for the kind.
func (k ToolKind) String() string {
	switch k {
	case ToolGrep:
		return "Grep"
	case ToolGlob:
		return "Glob"
	case ToolRead:
		return "Read"
	case ToolWrite:
		return "Write"
	case ToolEdit:
		return "Edit"
	default:
		return "Other"
	}
}

// ParseToolKind maps a wire-level tool name to its kind. Unrecognized
// names map to ToolOther; they still land in the full history so the
// exploratory-reading scan sees them.
func ParseToolKind(name string) ToolKind {
	switch name {
	case "Grep":
		return ToolGrep
	case "Glob":
		return ToolGlob
	case "Read":
		return ToolRead
	case "Write":
		return ToolWrite
	case "Edit":
		return ToolEdit
	default:
		return ToolOther
	}
}

// resultVariant tags the Result union.
type resultVariant int

const (
	resultAbsent resultVariant = iota
	resultItems
	resultText
)

// Result is the outcome attached to a tool call. It is a small tagged
// union: absent, a sequence of items (only the count matters), or raw
// text. Rules match on the variant they expect; a mismatched variant
// degrades to size zero rather than failing.
type Result struct {
	variant resultVariant
	count   int
	text    string
}

// NoResult returns the absent variant.
func NoResult() Result {
	return Result{variant: resultAbsent}
}

// ItemsResult returns a sequence result holding n items.
func ItemsResult(n int) Result {
	if n < 0 {
		n = 0
	}
	return Result{variant: resultItems, count: n}
}

// TextResult returns a raw-text result.
func TextResult(s string) Result {
	return Result{variant: resultText, text: s}
}

// Present reports whether the call carried any result at all.
func (r Result) Present() bool {
	return r.variant != resultAbsent
}

// ItemCount returns the sequence length, or 0 for non-sequence variants.
func (r Result) ItemCount() int {
	if r.variant != resultItems {
		return 0
	}
	return r.count
}

// Text returns the raw text, or "" for non-text variants.
func (r Result) Text() string {
	if r.variant != resultText {
		return ""
	}
	return r.text
}

// ToolCall is one observed tool invocation. It is immutable once
// recorded; the history store is its sole owner.
type ToolCall struct {
	Time   time.Time
	Kind   ToolKind
	Name   string // original wire-level identifier
	Args   map[string]string
	Result Result
}

// arg returns the named argument or "" when absent.
func (c ToolCall) arg(key string) string {
	if c.Args == nil {
		return ""
	}
	return c.Args[key]
}

// Trigger identifies which pattern rule fired a suggestion.
type Trigger string

const (
	TriggerMultipleSearches   Trigger = "multiple_searches"
	TriggerExploratoryReading Trigger = "exploratory_reading"
	TriggerBroadGlob          Trigger = "broad_glob"
	TriggerNoisyGrep          Trigger = "noisy_grep"
)

// Confidence grades how strongly a rule believes offloading would help.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Suggestion is an actionable recommendation to delegate exploration to
// an offload agent. Each detection creates a fresh value whose ownership
// passes to the caller; suggestions have no persistent identity here.
type Suggestion struct {
	Trigger          Trigger
	Confidence       Confidence
	EstimatedSavings string
	SuggestedQuery   string
	Context          map[string]any // rule-specific diagnostics
}
