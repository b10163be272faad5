// quantity.go recognizes money amounts and counted units in item text,
// including Indian-market multipliers (lakh, crore).
package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

// quantityPattern captures: optional currency marker, number with optional
// thousands separators and decimals, optional multiplier word, optional
// trailing unit word ("sq ft" is two words, everything else one).
var quantityPattern = regexp.MustCompile(
	`(?i)(\$|₹|€|£|usd|inr|eur|gbp|rs\.?)?\s*` +
		`(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s*` +
		`(?:(lakhs?|lacs?|crores?|cr|million|mn|billion|bn|thousand|k)\b)?\s*` +
		`(sq\.?\s*ft|[a-z]+)?`)

// multipliers maps a multiplier word to its factor.
var multipliers = map[string]float64{
	"lakh":     1e5,
	"lakhs":    1e5,
	"lac":      1e5,
	"lacs":     1e5,
	"crore":    1e7,
	"crores":   1e7,
	"cr":       1e7,
	"million":  1e6,
	"mn":       1e6,
	"billion":  1e9,
	"bn":       1e9,
	"thousand": 1e3,
	"k":        1e3,
}

// currencyCodes normalizes currency markers to a code.
var currencyCodes = map[string]string{
	"$":   "USD",
	"usd": "USD",
	"₹":   "INR",
	"rs":  "INR",
	"rs.": "INR",
	"inr": "INR",
	"€":   "EUR",
	"eur": "EUR",
	"£":   "GBP",
	"gbp": "GBP",
}

// countableUnits are the bare units a number may be reported with when no
// currency or multiplier is present. A number followed by any other word
// ("phase 3", "by 2026") is not a quantity.
var countableUnits = map[string]bool{
	"tablet": true, "tablets": true,
	"capsule": true, "capsules": true,
	"vial": true, "vials": true,
	"bottle": true, "bottles": true,
	"strip": true, "strips": true,
	"dose": true, "doses": true,
	"unit": true, "units": true,
	"kg": true, "tonne": true, "tonnes": true, "ton": true, "tons": true,
	"litre": true, "litres": true, "liter": true, "liters": true, "ml": true,
	"job": true, "jobs": true,
	"employee": true, "employees": true,
	"worker": true, "workers": true,
	"acre": true, "acres": true,
}

// QuantityExtractor finds quantity signals in text and bands them by
// magnitude. Bare numbers with no currency, multiplier, or recognized unit
// are deliberately skipped; a false quantity inflates the trigger score.
type QuantityExtractor struct {
	cfg config.QuantityConfig
}

// NewQuantityExtractor builds an extractor with the given magnitude bands.
func NewQuantityExtractor(cfg config.QuantityConfig) *QuantityExtractor {
	return &QuantityExtractor{cfg: cfg}
}

// Extract returns every recognized quantity in text, in occurrence order.
func (q *QuantityExtractor) Extract(text string) []domain.Quantity {
	var out []domain.Quantity
	for _, m := range quantityPattern.FindAllStringSubmatch(text, -1) {
		currency := strings.ToLower(strings.TrimSpace(m[1]))
		number := m[2] + m[3]
		multiplier := strings.ToLower(m[4])
		unit := normalizeUnit(m[5])

		value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
		if err != nil || value <= 0 {
			continue
		}

		factor, hasMultiplier := multipliers[multiplier]
		hasCurrency := currency != ""
		hasUnit := unit == "sq ft" || countableUnits[unit]

		if !hasCurrency && !hasMultiplier && !hasUnit {
			continue
		}
		if !hasMultiplier {
			factor = 1
		}

		normalized := value * factor

		reported := unit
		if !hasUnit {
			reported = multiplier
		}

		// The trailing word group also matches unrelated text ("$50
		// million capacity"); keep only recognized units in the audit
		// string.
		raw := strings.TrimSpace(m[0])
		if !hasUnit && m[5] != "" {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, m[5]))
		}

		out = append(out, domain.Quantity{
			Value:      value,
			Unit:       reported,
			Currency:   currencyCodes[currency],
			Normalized: normalized,
			Scale:      q.Scale(normalized),
			Raw:        raw,
		})
	}
	return out
}

// Scale bands a normalized value against the configured thresholds.
func (q *QuantityExtractor) Scale(normalized float64) string {
	switch {
	case normalized >= q.cfg.ScaleEnterprise:
		return domain.ScaleEnterprise
	case normalized >= q.cfg.ScaleLarge:
		return domain.ScaleLarge
	case normalized >= q.cfg.ScaleMedium:
		return domain.ScaleMedium
	default:
		return domain.ScaleSmall
	}
}

// MaxNormalized returns the largest normalized value among quantities,
// or 0 when there are none.
func MaxNormalized(quantities []domain.Quantity) float64 {
	var max float64
	for _, qty := range quantities {
		if qty.Normalized > max {
			max = qty.Normalized
		}
	}
	return max
}

func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.ReplaceAll(u, ".", "")
	if u == "sqft" || u == "sq ft" || strings.HasPrefix(u, "sq") && strings.HasSuffix(u, "ft") {
		return "sq ft"
	}
	return u
}
