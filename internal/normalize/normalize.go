// Package normalize turns raw document text into the canonical forms used by
// the similarity engine.
//
// There are two deliberately different preprocessing paths:
//   - Text produces the canonical string fed to the vectorizer: lower-cased,
//     ASCII letters only, single-spaced. Digits, punctuation and non-Latin
//     scripts are replaced by spaces.
//   - Words produces the lower-cased, whitespace-split word sequence used by
//     the phrase matcher. Nothing is stripped, so punctuation stays attached
//     to words and stopwords are kept.
//
// Collapsing the two would make phrase matches disappear whenever the
// reference text contains punctuation inside a copied passage.
package normalize

import (
	"strings"
)

// Text lower-cases text, replaces every rune that is not an ASCII letter or
// whitespace with a space, collapses whitespace runs and trims the result.
func Text(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)

	var sb strings.Builder
	sb.Grow(len(lowered))
	for _, r := range lowered {
		// whitespace and everything outside a-z collapse to a separator
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Words lower-cases text and splits it on whitespace. The result keeps
// punctuation, digits and stopwords exactly as they appear.
func Words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
