package textutil

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// NormalizeName lowercases a name, strips punctuation, and collapses
// whitespace. Two items whose normalized names match are duplicates.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// NameSimilarity returns the edit-distance similarity of two normalized
// names in [0,1], 1 meaning identical.
func NameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, nil)
}
