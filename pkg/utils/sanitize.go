package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips any markup from a free-text form value and trims it.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// StrictPolicy escapes entities on the way out; templates escape again
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
