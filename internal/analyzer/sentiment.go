// sentiment.go scores item text against positive/negative word lexicons.
package analyzer

import (
	"math"

	"github.com/jonesrussell/pharma-triggers/internal/config"
)

// Sentiment labels returned by Label.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentScorer computes a lexicon-based polarity in [-1, 1]. The score
// never feeds the trigger score formula; it is carried on the trigger for
// ranking and reporting.
type SentimentScorer struct {
	positive  map[string]struct{}
	negative  map[string]struct{}
	posThresh float64
	negThresh float64
}

// NewSentimentScorer builds a scorer from the configured lexicons.
func NewSentimentScorer(cfg config.SentimentConfig) *SentimentScorer {
	s := &SentimentScorer{
		positive:  make(map[string]struct{}, len(cfg.Positive)),
		negative:  make(map[string]struct{}, len(cfg.Negative)),
		posThresh: cfg.PositiveThreshold,
		negThresh: cfg.NegativeThreshold,
	}
	for _, w := range cfg.Positive {
		s.positive[NormalizeText(w)] = struct{}{}
	}
	for _, w := range cfg.Negative {
		s.negative[NormalizeText(w)] = struct{}{}
	}
	return s
}

// Score returns the polarity of text: (positive hits - negative hits) over
// total lexicon hits, rounded to three decimals. Text with no lexicon hits
// scores 0.
func (s *SentimentScorer) Score(text string) float64 {
	pos, neg := s.count(text)
	total := pos + neg
	if total == 0 {
		return 0
	}
	return round3(float64(pos-neg) / float64(total))
}

// Subjectivity returns the fraction of tokens that hit either lexicon,
// rounded to three decimals.
func (s *SentimentScorer) Subjectivity(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	pos, neg := s.count(text)
	return round3(float64(pos+neg) / float64(len(tokens)))
}

// Label maps a polarity to positive/negative/neutral using the configured
// thresholds.
func (s *SentimentScorer) Label(polarity float64) string {
	switch {
	case polarity > s.posThresh:
		return SentimentPositive
	case polarity < s.negThresh:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func (s *SentimentScorer) count(text string) (pos, neg int) {
	for _, tok := range tokenize(text) {
		if _, ok := s.positive[tok]; ok {
			pos++
		}
		if _, ok := s.negative[tok]; ok {
			neg++
		}
	}
	return pos, neg
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
