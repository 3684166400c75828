// Package phone normalizes and formats North American phone numbers for display.
package phone

import (
	"strings"
	"unicode"
)

// Normalize returns only the digits of s
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsComplete reports whether s holds a full ten-digit number,
// optionally prefixed by the country code 1.
func IsComplete(s string) bool {
	digits := Normalize(s)
	return len(digits) == 10 || (len(digits) == 11 && digits[0] == '1')
}

// Format renders a complete number as (555) 123-4567 or +1 (555) 123-4567.
// Anything else is returned unchanged.
func Format(s string) string {
	digits := Normalize(s)
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	default:
		return s
	}
}

// Canonical returns the digit-only form of a complete number, or s with
// surrounding space trimmed when the number is not complete.
func Canonical(s string) string {
	if IsComplete(s) {
		return Normalize(s)
	}
	return strings.TrimFunc(s, unicode.IsSpace)
}
