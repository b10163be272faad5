// entity.go extracts the subject company name from item text.
package analyzer

import (
	"regexp"
	"strings"
)

// companyPattern matches a run of capitalized words ending in a corporate
// or pharma-sector suffix. It runs on the original-case text: casing is the
// signal, so extraction happens before normalization.
var companyPattern = regexp.MustCompile(
	`\b(?:[A-Z][A-Za-z&'.-]*\s+)+` +
		`(?:Pharmaceuticals?|Pharma|Lifesciences|Life\s?Sciences?|Laboratories|Labs?|` +
		`Biotech|Biosciences?|Healthcare|Therapeutics|Remedies|Drugs|` +
		`Ltd\.?|Limited|Pvt\.?|Inc\.?|Corp(?:oration)?\.?|LLC|GmbH|AG|PLC)\b`)

// EntityExtractor pulls the most likely company name from text. It is a
// heuristic: no gazetteer, no NER model, just capitalization plus suffix.
type EntityExtractor struct{}

// NewEntityExtractor returns an extractor.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{}
}

// Extract returns the longest company-shaped span in text, or "" when none
// is found. Longest wins so "Sun Pharmaceutical Industries Ltd" beats the
// embedded "Sun Pharmaceutical".
func (e *EntityExtractor) Extract(text string) string {
	candidates := companyPattern.FindAllString(text, -1)
	if len(candidates) == 0 {
		return ""
	}

	best := ""
	for _, c := range candidates {
		c = cleanCompany(c)
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

func cleanCompany(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".")
}
