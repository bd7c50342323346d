// Package textnorm canonicalises free text for identity comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to base letters and drops combining marks (Ñ -> N, É -> E).
// Chained transformers keep state, so each call gets its own.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize strips diacritics, collapses whitespace runs to a single space,
// trims and upper-cases. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks(), text)
	if err != nil {
		// Only possible on invalid UTF-8; fall back to the raw text.
		stripped = text
	}
	return strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
}

// Contains reports whether needle occurs in haystack once both are normalised.
func Contains(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}

// FirstLine returns the first non-blank line of a multi-line cell, untouched.
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
