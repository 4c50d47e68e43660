package common

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// GenerateRunID returns a unique identifier for one analysis run.
func GenerateRunID() string {
	return uuid.New().String()
}

// TruncateRunes cuts s to at most max characters. The cut is hard: it does not
// look for word or sentence boundaries, but it never splits a multi-byte character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Preview returns a single-line prefix of s for log output.
func Preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return TruncateRunes(s, max) + "..."
}
