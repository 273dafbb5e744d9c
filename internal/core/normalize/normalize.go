// Package normalize prepares raw content for fingerprinting and scoring.
// Identical inputs must normalize to identical byte sequences, so the rules
// here are deliberately boring: NFKC, case fold, whitespace collapse
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Text canonicalizes a content string: NFKC normalization, case folding,
// zero-width rune removal, and whitespace collapsed to single spaces
func Text(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if isZeroWidth(r) {
			continue
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// isZeroWidth reports runes that render as nothing but change byte identity
func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}
