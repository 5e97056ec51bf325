package settings

import "strings"

// detectIndent returns the indentation unit an existing JSON document
// uses, taken from its first indented line. Documents with no indented
// lines get the two-space default so a rewrite stays readable.
func detectIndent(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		body := strings.TrimLeft(line, " \t")
		if body == "" || len(body) == len(line) {
			continue
		}
		return line[:len(line)-len(body)]
	}
	return "  "
}
