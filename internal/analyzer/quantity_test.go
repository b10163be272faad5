package analyzer_test

import (
	"math"
	"testing"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

func testQuantityConfig() config.QuantityConfig {
	return config.QuantityConfig{
		ScaleMedium:     10_000,
		ScaleLarge:      100_000,
		ScaleEnterprise: 1_000_000,
	}
}

func TestQuantityExtractor_Extract(t *testing.T) {
	q := analyzer.NewQuantityExtractor(testQuantityConfig())

	testCases := []struct {
		name       string
		text       string
		value      float64
		unit       string
		currency   string
		normalized float64
		scale      string
	}{
		{
			name:       "usd million",
			text:       "a $50 million investment in the new line",
			value:      50,
			unit:       "million",
			currency:   "USD",
			normalized: 50_000_000,
			scale:      domain.ScaleEnterprise,
		},
		{
			name:       "rupee crore",
			text:       "project worth ₹75 crore announced",
			value:      75,
			unit:       "crore",
			currency:   "INR",
			normalized: 750_000_000,
			scale:      domain.ScaleEnterprise,
		},
		{
			name:       "rs lakh",
			text:       "penalty of Rs 5 lakh imposed",
			value:      5,
			unit:       "lakh",
			currency:   "INR",
			normalized: 500_000,
			scale:      domain.ScaleLarge,
		},
		{
			name:       "square feet with thousands separator",
			text:       "a 50,000 sq ft facility",
			value:      50_000,
			unit:       "sq ft",
			normalized: 50_000,
			scale:      domain.ScaleMedium,
		},
		{
			name:       "bare count with known unit",
			text:       "creating 200 jobs in the region",
			value:      200,
			unit:       "jobs",
			normalized: 200,
			scale:      domain.ScaleSmall,
		},
		{
			name:       "decimal billion",
			text:       "revenue of $1.2 billion last year",
			value:      1.2,
			unit:       "billion",
			currency:   "USD",
			normalized: 1_200_000_000,
			scale:      domain.ScaleEnterprise,
		},
		{
			name:       "tonnes",
			text:       "capacity of 12,000 tonnes per annum",
			value:      12_000,
			unit:       "tonnes",
			normalized: 12_000,
			scale:      domain.ScaleMedium,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := q.Extract(tc.text)
			if len(got) != 1 {
				t.Fatalf("expected 1 quantity, got %d: %v", len(got), got)
			}
			qty := got[0]
			if qty.Value != tc.value {
				t.Errorf("value: expected %v, got %v", tc.value, qty.Value)
			}
			if qty.Unit != tc.unit {
				t.Errorf("unit: expected %q, got %q", tc.unit, qty.Unit)
			}
			if qty.Currency != tc.currency {
				t.Errorf("currency: expected %q, got %q", tc.currency, qty.Currency)
			}
			if math.Abs(qty.Normalized-tc.normalized) > 1e-6 {
				t.Errorf("normalized: expected %v, got %v", tc.normalized, qty.Normalized)
			}
			if qty.Scale != tc.scale {
				t.Errorf("scale: expected %s, got %s", tc.scale, qty.Scale)
			}
		})
	}
}

func TestQuantityExtractor_SkipsBareNumbers(t *testing.T) {
	q := analyzer.NewQuantityExtractor(testQuantityConfig())

	// Years, phase numbers, and unqualified figures must not become
	// quantity signals.
	texts := []string{
		"the deal closes in 2026",
		"phase 3 trial results expected",
		"section 21 of the order",
	}
	for _, text := range texts {
		if got := q.Extract(text); len(got) != 0 {
			t.Errorf("expected no quantities in %q, got %v", text, got)
		}
	}
}

func TestQuantityExtractor_MultipleQuantities(t *testing.T) {
	q := analyzer.NewQuantityExtractor(testQuantityConfig())

	got := q.Extract("a $50 million plant creating 200 jobs")
	if len(got) != 2 {
		t.Fatalf("expected 2 quantities, got %d: %v", len(got), got)
	}

	if max := analyzer.MaxNormalized(got); max != 50_000_000 {
		t.Errorf("expected max normalized 50000000, got %v", max)
	}
}

func TestQuantityExtractor_ScaleBands(t *testing.T) {
	q := analyzer.NewQuantityExtractor(testQuantityConfig())

	testCases := []struct {
		normalized float64
		expected   string
	}{
		{500, domain.ScaleSmall},
		{9_999, domain.ScaleSmall},
		{10_000, domain.ScaleMedium},
		{99_999, domain.ScaleMedium},
		{100_000, domain.ScaleLarge},
		{1_000_000, domain.ScaleEnterprise},
		{5e9, domain.ScaleEnterprise},
	}

	for _, tc := range testCases {
		if got := q.Scale(tc.normalized); got != tc.expected {
			t.Errorf("Scale(%v): expected %s, got %s", tc.normalized, tc.expected, got)
		}
	}
}

func TestQuantityExtractor_RawKeepsOnlyRecognizedUnits(t *testing.T) {
	q := analyzer.NewQuantityExtractor(testQuantityConfig())

	testCases := []struct {
		text string
		raw  string
	}{
		{"a $50 million capacity expansion", "$50 million"},
		{"penalty of Rs 5 lakh imposed", "Rs 5 lakh"},
		{"a 50,000 sq ft facility", "50,000 sq ft"},
		{"creating 200 jobs in the region", "200 jobs"},
	}
	for _, tc := range testCases {
		got := q.Extract(tc.text)
		if len(got) != 1 {
			t.Fatalf("%q: expected 1 quantity, got %d", tc.text, len(got))
		}
		if got[0].Raw != tc.raw {
			t.Errorf("%q: raw audit string %q, want %q", tc.text, got[0].Raw, tc.raw)
		}
	}
}

func TestMaxNormalized_Empty(t *testing.T) {
	if got := analyzer.MaxNormalized(nil); got != 0 {
		t.Errorf("expected 0 for no quantities, got %v", got)
	}
}
