// Package normalize canonicalizes user input before it is validated or stored.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PIN trims surrounding whitespace. PIN characters are otherwise preserved.
func PIN(s string) string {
	return strings.TrimSpace(s)
}

// Caption trims a caption and collapses runs of whitespace (including newlines)
// into single spaces.
func Caption(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Text trims surrounding whitespace. Case is preserved.
func Text(s string) string {
	return strings.TrimSpace(s)
}
