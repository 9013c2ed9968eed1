package harvest

import (
	"regexp"
	"strings"
)

var (
	spacedNewlines = regexp.MustCompile(`\s*\n\s*`)
	repeatedBreaks = regexp.MustCompile(`\n{2,}`)
)

// cleanText collapses whitespace around line breaks and drops empty lines.
func cleanText(raw string) string {
	s := strings.TrimSpace(spacedNewlines.ReplaceAllString(raw, "\n"))
	return repeatedBreaks.ReplaceAllString(s, "\n")
}
