// Package sanitize normalizes raw text before it is classified or embedded.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// MaxChars is the maximum length, in characters, of sanitized text.
const MaxChars = 8000

// Text removes control characters, collapses whitespace runs to a single
// space, trims, and caps the result at MaxChars characters. Tab and newline
// are kept as whitespace and therefore collapse like any other space.
// A cut that lands on a space drops it, leaving MaxChars-1 characters.
// Text is idempotent.
func Text(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	s = strings.Map(func(r rune) rune {
		if isControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) <= MaxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxChars {
			s = s[:i]
			break
		}
		n++
	}
	// A cut landing on a space would otherwise break idempotence.
	return strings.TrimRight(s, " ")
}

// Strings sanitizes each text and drops the ones that end up empty.
// Output order follows input order.
func Strings(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if clean := Text(t); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Texts is Strings for loosely typed input. Strings and byte slices are
// coerced to text; items of any other type are discarded.
func Texts(items ...any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var raw string
		switch v := item.(type) {
		case string:
			raw = v
		case []byte:
			raw = string(v)
		default:
			continue
		}
		if clean := Text(raw); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// isControl matches the C0 range except tab and newline, plus DEL.
func isControl(r rune) bool {
	if r == '\t' || r == '\n' {
		return false
	}
	return r <= 0x1F || r == 0x7F
}
