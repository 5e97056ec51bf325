package detector

import "strings"

// theme groups search keywords under a human-readable topic label.
type theme struct {
	label    string
	keywords []string
}

// knownThemes is checked in declaration order: when a combined pattern
// text matches several themes, the earliest declared one wins.
var knownThemes = []theme{
	{"authentication", []string{"auth", "login", "session", "token", "permission"}},
	{"validation", []string{"valid", "check", "verify", "sanitize"}},
	{"error handling", []string{"error", "exception", "catch", "fail"}},
	{"testing", []string{"test", "spec", "mock", "fixture"}},
	{"configuration", []string{"config", "setting", "env", "option"}},
	{"database", []string{"db", "database", "query", "sql", "model"}},
}

// inferTheme maps a list of search patterns to a topic label. Patterns
// are lower-cased and joined, then each theme's keywords are tested as
// substrings in declaration order. With no match the first pattern is
// returned verbatim; with no patterns at all the label falls back to
// "this functionality".
func inferTheme(patterns []string) string {
	if len(patterns) == 0 {
		return "this functionality"
	}

	combined := strings.ToLower(strings.Join(patterns, " "))
	for _, th := range knownThemes {
		for _, kw := range th.keywords {
			if strings.Contains(combined, kw) {
				return th.label
			}
		}
	}

	return patterns[0]
}
