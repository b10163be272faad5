package trigger_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

func testScoringConfig() config.ScoringConfig {
	cfg := config.ScoringConfig{}
	full := config.Config{Scoring: cfg}
	full.SetDefaults()
	return full.Scoring
}

func match(category string) domain.KeywordMatch {
	return domain.KeywordMatch{Phrase: "phrase", Category: category}
}

func quantity(scale string) domain.Quantity {
	return domain.Quantity{Normalized: 1, Scale: scale}
}

func TestScorer_Score_Calibration(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		matches     []domain.KeywordMatch
		quantities  []domain.Quantity
		source      domain.SourceType
		publishedAt time.Time
		expected    int
	}{
		{
			name: "fresh expansion with enterprise money scores high",
			matches: []domain.KeywordMatch{
				{Phrase: "capacity expansion", Category: "expansion"},
			},
			quantities:  []domain.Quantity{quantity(domain.ScaleEnterprise)},
			source:      domain.SourceNews,
			publishedAt: now.Add(-6 * time.Hour),
			// 2.0 keyword + 2.5 quantity + 2.0 recency + 1.0 source = 7.5 -> 8
			expected: 8,
		},
		{
			name: "stale single keyword scores low",
			matches: []domain.KeywordMatch{
				{Phrase: "renovation", Category: "expansion"},
			},
			source:      domain.SourceNews,
			publishedAt: now.AddDate(0, -8, 0),
			// 2.0 keyword + 0.5 stale + 1.0 source = 3.5 -> 4
			expected: 4,
		},
		{
			name:        "no matches scores near the floor",
			source:      domain.SourceNews,
			publishedAt: now.AddDate(-1, 0, 0),
			// 0.5 stale + 1.0 source = 1.5 -> 2
			expected: 2,
		},
		{
			name: "regulatory source outweighs news",
			matches: []domain.KeywordMatch{
				{Phrase: "warning letter", Category: "competitor_issue"},
			},
			source:      domain.SourceRegulatory,
			publishedAt: now.Add(-2 * time.Hour),
			// 2.0 keyword + 2.0 recency + 2.0 source = 6
			expected: 6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(tc.matches, tc.quantities, tc.source, tc.publishedAt, now)
			if got != tc.expected {
				t.Errorf("expected score %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestScorer_Score_AlwaysInRange(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Now()

	// Saturate every component.
	matches := make([]domain.KeywordMatch, 0, 12)
	for _, cat := range []string{"a", "b", "c", "d"} {
		for i := 0; i < 3; i++ {
			matches = append(matches, match(cat))
		}
	}
	got := s.Score(matches, []domain.Quantity{quantity(domain.ScaleEnterprise)}, domain.SourceTender, now, now)
	if got != domain.MaxTriggerScore {
		t.Errorf("saturated input should clamp to %d, got %d", domain.MaxTriggerScore, got)
	}

	got = s.Score(nil, nil, domain.SourceType("unknown"), time.Time{}, now)
	if got < domain.MinTriggerScore || got > domain.MaxTriggerScore {
		t.Errorf("score out of range: %d", got)
	}
}

func TestScorer_Score_DiminishingReturnsPerCategory(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Now()
	published := now.Add(-2 * time.Hour)

	// Ten phrases from one category vs one phrase each from three.
	sameCat := make([]domain.KeywordMatch, 10)
	for i := range sameCat {
		sameCat[i] = match("expansion")
	}
	spread := []domain.KeywordMatch{match("expansion"), match("licensing"), match("product_approval")}

	deep := s.Score(sameCat, nil, domain.SourceNews, published, now)
	broad := s.Score(spread, nil, domain.SourceNews, published, now)
	if deep >= broad {
		t.Errorf("breadth should outscore depth: same-category=%d, spread=%d", deep, broad)
	}
}

func TestScorer_Score_MonotonicInMatches(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Now()
	published := now.Add(-2 * time.Hour)

	one := s.Score([]domain.KeywordMatch{match("expansion")}, nil, domain.SourceNews, published, now)
	two := s.Score([]domain.KeywordMatch{match("expansion"), match("licensing")}, nil, domain.SourceNews, published, now)
	if two < one {
		t.Errorf("adding a category lowered the score: %d -> %d", one, two)
	}
}

func TestScorer_Score_QuantityBonusDoesNotStack(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Now()
	published := now.Add(-2 * time.Hour)
	matches := []domain.KeywordMatch{match("expansion")}

	one := s.Score(matches, []domain.Quantity{quantity(domain.ScaleLarge)}, domain.SourceNews, published, now)
	many := s.Score(matches, []domain.Quantity{
		quantity(domain.ScaleLarge), quantity(domain.ScaleLarge), quantity(domain.ScaleSmall),
	}, domain.SourceNews, published, now)
	if one != many {
		t.Errorf("multiple quantities in the same band should not stack: %d vs %d", one, many)
	}
}

func TestScorer_Score_SentimentNeverMovesScore(t *testing.T) {
	// The formula takes no sentiment argument; this pins the ranking rule
	// instead: equal scores rank by more negative sentiment first.
	a := &domain.Trigger{TriggerScore: 6, SentimentScore: -0.8}
	b := &domain.Trigger{TriggerScore: 6, SentimentScore: 0.4}

	if !trigger.Less(a, b) {
		t.Error("more negative sentiment should rank first at equal score")
	}
	if trigger.Less(b, a) {
		t.Error("ranking must be asymmetric")
	}
}

func TestLess_ScoreDominates(t *testing.T) {
	low := &domain.Trigger{TriggerScore: 4, SentimentScore: -1}
	high := &domain.Trigger{TriggerScore: 9, SentimentScore: 1}
	if !trigger.Less(high, low) {
		t.Error("higher score must rank first regardless of sentiment")
	}
}

func TestScorer_Score_FutureDatedCountsAsFresh(t *testing.T) {
	s := trigger.NewScorer(testScoringConfig(), nil)
	now := time.Now()
	matches := []domain.KeywordMatch{match("expansion")}

	future := s.Score(matches, nil, domain.SourceNews, now.Add(6*time.Hour), now)
	fresh := s.Score(matches, nil, domain.SourceNews, now.Add(-1*time.Hour), now)
	if future != fresh {
		t.Errorf("future-dated item should score like a fresh one: %d vs %d", future, fresh)
	}
}
