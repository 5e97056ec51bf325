package detector

import (
	"fmt"
	"strings"
	"time"
)

// The pattern rules run in this fixed priority order on every recorded
// call; the first rule to fire wins and the rest are skipped.
//
//  1. multiple searches   - repeated Grep/Glob calls inside the window
//  2. exploratory reading - a run of Read calls with no Write/Edit
//  3. broad glob          - one glob returning a large file set
//  4. noisy grep          - one grep returning many matching lines
type rule func(h *history, t Thresholds, now time.Time) *Suggestion

var rules = []rule{
	detectMultipleSearches,
	detectExploratoryReading,
	detectBroadGlob,
	detectNoisyGrep,
}

// detectMultipleSearches fires when the session has issued at least
// MinGrepCalls search calls within the time window. The combined search
// patterns are mapped to a topic so the offload query reads naturally.
func detectMultipleSearches(h *history, t Thresholds, now time.Time) *Suggestion {
	calls := recent(h.searches, t.TimeWindow, now)
	if len(calls) < t.MinGrepCalls {
		return nil
	}

	patterns := make([]string, len(calls))
	for i, c := range calls {
		patterns[i] = c.arg("pattern")
	}
	topic := inferTheme(patterns)

	return &Suggestion{
		Trigger:          TriggerMultipleSearches,
		Confidence:       ConfidenceHigh,
		EstimatedSavings: "20-30k tokens",
		SuggestedQuery:   fmt.Sprintf("Where is %s implemented? List files, functions, and flow.", topic),
		Context: map[string]any{
			"patterns":   patterns,
			"call_count": len(calls),
		},
	}
}

// detectExploratoryReading fires after a run of Read calls uninterrupted
// by a Write or Edit. The scan walks the full history newest to oldest:
// a Write/Edit halts it, any other tool kind is skipped without
// resetting the count.
func detectExploratoryReading(h *history, t Thresholds, now time.Time) *Suggestion {
	var files []string // reverse-chronological
	count := 0

scan:
	for i := len(h.all) - 1; i >= 0; i-- {
		c := h.all[i]
		switch c.Kind {
		case ToolRead:
			count++
			files = append(files, c.arg("file_path"))
		case ToolWrite, ToolEdit:
			break scan
		}
	}

	if count < t.MinReadCalls {
		return nil
	}

	dir, ok := commonDir(files)
	if !ok || dir == "" {
		dir = "the codebase"
	}

	return &Suggestion{
		Trigger:          TriggerExploratoryReading,
		Confidence:       ConfidenceHigh,
		EstimatedSavings: "30-40k tokens",
		SuggestedQuery:   fmt.Sprintf("Explain the architecture and purpose of %s", dir),
		Context: map[string]any{
			"files":      files,
			"read_count": count,
		},
	}
}

// detectBroadGlob examines only the single most recent Glob call: the
// first one found scanning newest to oldest halts the scan whether or
// not it fires. A result size at or above MinGlobResults means the
// assistant just pulled a large file listing into context.
func detectBroadGlob(h *history, t Thresholds, now time.Time) *Suggestion {
	for i := len(h.all) - 1; i >= 0; i-- {
		c := h.all[i]
		if c.Kind != ToolGlob {
			continue
		}
		size := c.Result.ItemCount()
		if !c.Result.Present() || size < t.MinGlobResults {
			return nil
		}
		return &Suggestion{
			Trigger:          TriggerBroadGlob,
			Confidence:       ConfidenceMedium,
			EstimatedSavings: "15-25k tokens",
			SuggestedQuery:   fmt.Sprintf("What's in %s? Summarize structure and purpose", c.arg("pattern")),
			Context: map[string]any{
				"pattern":      c.arg("pattern"),
				"result_count": size,
			},
		}
	}
	return nil
}

// detectNoisyGrep examines only the single most recent Grep call,
// counting the lines of its textual result. Non-text results count as
// zero lines.
func detectNoisyGrep(h *history, t Thresholds, now time.Time) *Suggestion {
	for i := len(h.all) - 1; i >= 0; i-- {
		c := h.all[i]
		if c.Kind != ToolGrep {
			continue
		}
		size := lineCount(c.Result.Text())
		if !c.Result.Present() || size < t.MaxGrepResults {
			return nil
		}
		return &Suggestion{
			Trigger:          TriggerNoisyGrep,
			Confidence:       ConfidenceHigh,
			EstimatedSavings: "25-35k tokens",
			SuggestedQuery:   fmt.Sprintf("Find all instances of '%s' and explain usage patterns", c.arg("pattern")),
			Context: map[string]any{
				"pattern":      c.arg("pattern"),
				"result_count": size,
			},
		}
	}
	return nil
}

// lineCount returns the number of newline-separated lines in s, or 0
// for the empty string.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// commonDir computes the longest common directory prefix of the given
// paths. Empty paths are ignored. It fails (ok=false) when no non-empty
// paths remain or when the paths are incomparable, i.e. a mix of
// absolute and relative.
func commonDir(paths []string) (string, bool) {
	var nonEmpty []string
	for _, p := range paths {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return "", false
	}

	abs := strings.HasPrefix(nonEmpty[0], "/")
	for _, p := range nonEmpty[1:] {
		if strings.HasPrefix(p, "/") != abs {
			return "", false
		}
	}

	if len(nonEmpty) == 1 {
		return nonEmpty[0], true
	}

	common := strings.Split(nonEmpty[0], "/")
	for _, p := range nonEmpty[1:] {
		parts := strings.Split(p, "/")
		if len(parts) < len(common) {
			common = common[:len(parts)]
		}
		for i := range common {
			if common[i] != parts[i] {
				common = common[:i]
				break
			}
		}
	}

	dir := strings.Join(common, "/")
	if abs && dir == "" {
		dir = "/"
	}
	return dir, true
}
