// scorer.go computes the 1-10 opportunity score from analyzed signals.
package trigger

import (
	"math"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

// Scorer turns matches, quantities, source type, and age into an integer
// score in [1, 10]. Every coefficient comes from config; the structure of
// the formula is fixed here. Sentiment is deliberately absent: it ranks
// otherwise-equal candidates, it never moves the score.
type Scorer struct {
	cfg    config.ScoringConfig
	logger logger.Logger
}

// NewScorer builds a scorer from the configured coefficients.
func NewScorer(cfg config.ScoringConfig, log logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, logger: log}
}

// Score computes the trigger score:
//
//	keyword base (diminishing per category)
//	+ quantity bonus (largest scale band present)
//	+ recency bonus (step decay on publish age)
//	+ source weight
//
// rounded and clamped to [1, 10]. An item with matches never scores 0.
func (s *Scorer) Score(matches []domain.KeywordMatch, quantities []domain.Quantity, source domain.SourceType, publishedAt, now time.Time) int {
	total := s.keywordComponent(matches) +
		s.quantityComponent(quantities) +
		s.recencyComponent(publishedAt, now) +
		s.cfg.SourceWeights[string(source)]

	score := int(math.Round(total))
	if score < domain.MinTriggerScore {
		score = domain.MinTriggerScore
	}
	if score > domain.MaxTriggerScore {
		score = domain.MaxTriggerScore
	}
	return score
}

// keywordComponent sums per-category contributions with diminishing
// returns: the first phrase of a category earns CategoryBase, phrases two
// through CategoryCap earn CategoryRepeat, the rest earn nothing. A tenth
// phrase from one category cannot outrank phrases from three categories.
func (s *Scorer) keywordComponent(matches []domain.KeywordMatch) float64 {
	perCategory := make(map[string]int)
	total := 0.0
	for _, m := range matches {
		perCategory[m.Category]++
		switch n := perCategory[m.Category]; {
		case n == 1:
			total += s.cfg.CategoryBase
		case n <= s.cfg.CategoryCap:
			total += s.cfg.CategoryRepeat
		}
	}
	return total
}

// quantityComponent returns the bonus for the largest scale band present.
// Bonuses do not stack across quantities; the bonus is bounded by the
// largest configured band.
func (s *Scorer) quantityComponent(quantities []domain.Quantity) float64 {
	best := 0.0
	for _, q := range quantities {
		if b := s.cfg.QuantityBonus[q.Scale]; b > best {
			best = b
		}
	}
	return best
}

// recencyComponent walks the configured steps and returns the bonus of the
// first band the item's age fits. Older than every band, or undated, earns
// the stale bonus. A future-dated item counts as age zero.
func (s *Scorer) recencyComponent(publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() {
		return s.cfg.StaleBonus
	}
	age := now.Sub(publishedAt)
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	for _, step := range s.cfg.RecencySteps {
		if days <= float64(step.MaxAgeDays) {
			return step.Bonus
		}
	}
	return s.cfg.StaleBonus
}

// Less ranks trigger a ahead of b: higher score first, then more negative
// sentiment (a struggling competitor is a hotter lead than a thriving one),
// then newer publish date. This is the only place sentiment participates.
func Less(a, b *domain.Trigger) bool {
	if a.TriggerScore != b.TriggerScore {
		return a.TriggerScore > b.TriggerScore
	}
	if a.SentimentScore != b.SentimentScore {
		return a.SentimentScore < b.SentimentScore
	}
	return a.PublishedAt.After(b.PublishedAt)
}

// Build assembles a candidate trigger from a validated item and its
// analysis results. The candidate carries everything but an ID and a
// dedup decision.
func (s *Scorer) Build(item domain.RawItem, matches []domain.KeywordMatch, quantities []domain.Quantity, sentiment float64, company, bucket string, now time.Time) *domain.Trigger {
	fp := ComputeFingerprint(company, analyzer.Categories(matches), item.SourceType, item.PublishedAt, bucket)

	return &domain.Trigger{
		SourceType:         item.SourceType,
		SourceName:         item.SourceName,
		Title:              item.Title,
		SourceURL:          item.SourceURL,
		CompanyName:        company,
		MatchedKeywords:    analyzer.Phrases(matches),
		TriggerScore:       s.Score(matches, quantities, item.SourceType, item.PublishedAt, now),
		SentimentScore:     sentiment,
		QuantitySignal:     analyzer.MaxNormalized(quantities),
		ContentFingerprint: fp.Digest,
		Status:             domain.StatusActive,
		PublishedAt:        item.PublishedAt,
		IngestedAt:         now,
	}
}
