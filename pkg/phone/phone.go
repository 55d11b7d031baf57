package phone

import (
	"regexp"
	"strings"
)

var (
	separators   = regexp.MustCompile(`[\s\-().]`)
	validPattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Normalize strips spaces, dashes, dots and parentheses so the same number
// always maps to the same key regardless of how the caller formatted it.
func Normalize(raw string) string {
	return separators.ReplaceAllString(strings.TrimSpace(raw), "")
}

// IsValid reports whether a normalized number looks like a dialable phone
// number: optional leading +, 10 to 15 digits.
func IsValid(normalized string) bool {
	return validPattern.MatchString(normalized)
}
