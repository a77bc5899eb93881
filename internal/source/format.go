package source

import (
	"strings"
)

// Format normalizes whitespace: LF line endings, no trailing spaces, no
// leading blank lines, at most one consecutive blank line, and exactly one
// trailing newline. An all-blank input formats to the empty string.
func Format(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if len(out) == 0 {
				continue
			}
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
