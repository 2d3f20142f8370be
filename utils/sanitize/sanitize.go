// Package sanitize implements the defensive cleanup applied to every
// free-text field before persistence: markup is stripped, angle brackets and
// quote characters are removed, and surrounding whitespace is trimmed.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	dangerousPattern = regexp.MustCompile(`[<>"']`)
)

// Clean sanitizes user input. Empty input passes through untouched.
func Clean(value string) string {
	if value == "" {
		return value
	}
	value = tagPattern.ReplaceAllString(value, "")
	value = dangerousPattern.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}
