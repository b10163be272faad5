// Package analyzer provides the independent extractors that run over every
// raw item: keyword matching, sentiment, quantity, and entity extraction.
// Extractors are pure functions of the text, with no network access and no
// shared state.
package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText lowercases, NFKC-folds, and replaces every non-alphanumeric
// rune with a space, collapsing runs. This makes phrase matching
// boundary-based: "in-licensing" and "in licensing" normalize identically,
// and "recall" will not match inside "recalls".
func NormalizeText(text string) string {
	text = strings.ToLower(norm.NFKC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
