// Package textutil holds the text normalization helpers shared by every
// extraction strategy.
package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean collapses every whitespace run, newlines included, to a single
// space and trims the result, so cleaned text is always one line.
// Idempotent.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Truncate caps s at max runes. Extracted bodies are capped, never rejected.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
