// Package normalize canonicalizes place names for join-key construction.
//
// The statistic table and the boundary dataset are authored independently and
// disagree on cosmetic whitespace (half-width, full-width, embedded). Keys
// built here must be identical for two records naming the same place and
// period regardless of that variation. No case folding and no romanization:
// names differing by script or case are distinct places as far as the join
// is concerned.
package normalize

import (
	"strings"
	"unicode"
)

// KeySeparator joins the key parts. Normalized names cannot contain it:
// place names in both source datasets are CJK text and digits, and the
// character is rejected by Normalize regardless.
const KeySeparator = "|"

// Normalize trims leading/trailing whitespace and removes all internal
// whitespace, including the full-width space U+3000. Empty or all-whitespace
// input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BuildKey builds the composite join key for a place and period. Year and
// month are passed through as-is after trimming; the caller supplies them in
// the same textual form for both datasets.
func BuildKey(prefecture, city, year, month string) string {
	parts := []string{
		Normalize(prefecture),
		Normalize(city),
		strings.TrimSpace(year),
		strings.TrimSpace(month),
	}
	return strings.Join(parts, KeySeparator)
}
