// Package normalize maps display names to the comparison keys used for
// entity matching. Two records are considered the same entity when their
// keys are equal and non-empty.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Key returns the comparison key for a display name: Unicode-folded,
// lower-cased, with whitespace runs collapsed to a single space and all
// characters outside letters, digits and space removed. An empty or
// absent name keys to "" and never matches anything.
func Key(name string) string {
	if name == "" {
		return ""
	}

	// NFKC first so composed and decomposed spellings compare equal.
	s := cases.Lower(language.Und).String(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pending = true
		}
	}
	return b.String()
}
