// keywords.go implements an Aho-Corasick based phrase matcher for O(n+m)
// taxonomy matching across all categories in a single pass.
package analyzer

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

// KeywordMatcher matches taxonomy phrases against item text. The automaton
// is built once at construction; matching is read-only and safe for
// concurrent use.
type KeywordMatcher struct {
	matcher *ahocorasick.Matcher
	phrases []string     // normalized phrases, automaton index order
	meta    []phraseMeta // parallel to phrases
	logger  logger.Logger
}

type phraseMeta struct {
	phrase   string // normalized phrase as reported in matches
	category string
}

// NewKeywordMatcher builds the automaton from a category -> phrases taxonomy.
// Empty phrases are skipped; duplicate (category, phrase) pairs collapse to one.
func NewKeywordMatcher(taxonomy config.Taxonomy, log logger.Logger) *KeywordMatcher {
	m := &KeywordMatcher{logger: log}

	categories := make([]string, 0, len(taxonomy))
	for cat := range taxonomy {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	seen := make(map[string]bool)
	for _, cat := range categories {
		for _, phrase := range taxonomy[cat] {
			normalized := NormalizeText(phrase)
			if normalized == "" {
				continue
			}
			key := cat + "|" + normalized
			if seen[key] {
				continue
			}
			seen[key] = true
			m.phrases = append(m.phrases, normalized)
			m.meta = append(m.meta, phraseMeta{phrase: normalized, category: cat})
		}
	}

	if len(m.phrases) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.phrases)
	}

	if log != nil {
		log.Debug("keyword matcher initialized",
			logger.Int("categories", len(categories)),
			logger.Int("phrases", len(m.phrases)))
	}

	return m
}

// Match returns every taxonomy phrase found in text on word boundaries,
// ordered by first occurrence. A phrase is reported at most once per
// category; a phrase listed under two categories yields two matches.
func (m *KeywordMatcher) Match(text string) []domain.KeywordMatch {
	if m.matcher == nil {
		return nil
	}

	// Pad with spaces so the boundary check below also covers phrases at
	// the start and end of the text.
	normalized := " " + NormalizeText(text) + " "

	// The automaton reports which patterns occur as substrings; the padded
	// Index lookup then confirms a whole-word match and yields the position.
	hits := m.matcher.Match([]byte(normalized))

	matches := make([]domain.KeywordMatch, 0, len(hits))
	for _, hitIndex := range hits {
		if hitIndex >= len(m.phrases) {
			continue
		}
		meta := m.meta[hitIndex]
		pos := strings.Index(normalized, " "+meta.phrase+" ")
		if pos < 0 {
			continue // substring hit inside a longer word
		}
		matches = append(matches, domain.KeywordMatch{
			Phrase:   meta.phrase,
			Category: meta.category,
			Position: pos,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Position != matches[j].Position {
			return matches[i].Position < matches[j].Position
		}
		return matches[i].Phrase < matches[j].Phrase
	})

	return matches
}

// PhraseCount returns the number of phrases in the automaton.
func (m *KeywordMatcher) PhraseCount() int {
	return len(m.phrases)
}

// Categories returns the sorted distinct categories present in matches.
func Categories(matches []domain.KeywordMatch) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, km := range matches {
		if !seen[km.Category] {
			seen[km.Category] = true
			out = append(out, km.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Phrases returns the matched phrases in occurrence order.
func Phrases(matches []domain.KeywordMatch) []string {
	out := make([]string, 0, len(matches))
	for _, km := range matches {
		out = append(out, km.Phrase)
	}
	return out
}
