package redact

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches a fully-formed redaction placeholder.
var placeholderPattern = regexp.MustCompile(`^\[[A-Z]+_\d+\]$`)

// containsPlaceholder matches any placeholder occurrence inside a string.
var containsPlaceholder = regexp.MustCompile(`\[[A-Z]+_\d+\]`)

// session owns all mutable redaction state for exactly one scrub call:
// per-category counters and the original-value-to-placeholder assignments.
// Counters are shared across phases so the same original value always maps to
// the same placeholder, wherever it is found. A session must never be shared
// across concurrent scrub calls.
type session struct {
	counters     map[string]int
	replacements PIIMap
}

func newSession() *session {
	return &session{
		counters:     make(map[string]int),
		replacements: make(PIIMap),
	}
}

// placeholderFor returns the placeholder for an original value, assigning the
// next index in its category on first sight.
func (s *session) placeholderFor(category, original string) string {
	if ph, ok := s.replacements[original]; ok {
		return ph
	}
	s.counters[category]++
	ph := fmt.Sprintf("[%s_%d]", category, s.counters[category])
	s.replacements[original] = ph
	return ph
}

// isPlaceholder reports whether the token is itself a redaction placeholder.
func isPlaceholder(token string) bool {
	return placeholderPattern.MatchString(token)
}

// adjacentToPlaceholder reports whether the match at [start,end) touches
// placeholder syntax, meaning it is part of an already-assigned placeholder
// and must not be redacted again.
func adjacentToPlaceholder(text string, start, end int) bool {
	if start > 0 {
		switch text[start-1] {
		case '[', '_':
			return true
		}
	}
	if end < len(text) {
		switch text[end] {
		case ']', '_':
			return true
		}
	}
	return false
}
