package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases value, trims surrounding whitespace, and strips
// diacritical marks (NFD decomposition, combining marks dropped), so
// "Présent" and "present" compare equal.
func Fold(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return lowered
	}

	decomposed := norm.NFD.String(lowered)
	var builder strings.Builder
	builder.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// NormalizeToken folds value and drops every non-alphanumeric rune.
// "Taux Logement", "taux_lgt" and "TAUX-LOGEMENT" all normalize to plain
// letter/digit tokens for header comparison.
func NormalizeToken(value string) string {
	folded := Fold(value)
	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
