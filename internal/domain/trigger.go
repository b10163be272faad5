package domain

import "time"

// TriggerStatus is the lifecycle state of a persisted trigger.
type TriggerStatus string

// Trigger status constants
const (
	StatusActive     TriggerStatus = "active"
	StatusSuperseded TriggerStatus = "superseded"
	StatusDiscarded  TriggerStatus = "discarded"
)

// Score bounds for the opportunity score.
const (
	MinTriggerScore = 1
	MaxTriggerScore = 10
)

// KeywordMatch is one trigger phrase found in an item's text.
// A phrase is reported at most once per item even if it recurs.
type KeywordMatch struct {
	Phrase   string `json:"phrase"`
	Category string `json:"category"`
	Position int    `json:"position"` // byte offset of first occurrence in the normalized text
}

// Quantity magnitude bands, derived from the normalized value.
const (
	ScaleSmall      = "small"
	ScaleMedium     = "medium"
	ScaleLarge      = "large"
	ScaleEnterprise = "enterprise"
)

// Quantity is a numeric magnitude recognized in an item's text,
// e.g. "$50 million" or "50,000 sq ft".
type Quantity struct {
	Value      float64 `json:"value"`              // the number as written (50 for "$50 million")
	Unit       string  `json:"unit"`               // unit or multiplier word ("million", "sq ft", "jobs")
	Currency   string  `json:"currency,omitempty"` // ISO-ish code when a currency marker was present
	Normalized float64 `json:"normalized"`         // value with multipliers applied
	Scale      string  `json:"scale"`              // small, medium, large, enterprise
	Raw        string  `json:"raw"`                // matched text, for audit
}

// Trigger is the persisted unit of value: one scored, deduplicated
// outsourcing-opportunity signal. Records are never mutated after insert
// except for the status transition to superseded.
type Trigger struct {
	ID                 int64         `db:"id"                  json:"id"`
	SourceType         SourceType    `db:"source_type"         json:"source_type"`
	SourceName         string        `db:"source_name"         json:"source_name,omitempty"`
	Title              string        `db:"title"               json:"title"`
	SourceURL          string        `db:"source_url"          json:"source_url"`
	CompanyName        string        `db:"company_name"        json:"company_name,omitempty"`
	MatchedKeywords    []string      `db:"-"                   json:"matched_keywords"` // insertion order = discovery order
	TriggerScore       int           `db:"trigger_score"       json:"trigger_score"`    // always in [1,10]
	SentimentScore     float64       `db:"sentiment_score"     json:"sentiment_score"`  // [-1,1]
	QuantitySignal     float64       `db:"quantity_signal"     json:"quantity_signal"`  // max normalized quantity, 0 when none
	ContentFingerprint string        `db:"content_fingerprint" json:"content_fingerprint"`
	Status             TriggerStatus `db:"status"              json:"status"`
	Supersedes         int64         `db:"supersedes"          json:"supersedes,omitempty"` // id of the record this one replaced
	PublishedAt        time.Time     `db:"published_at"        json:"published_at"`
	IngestedAt         time.Time     `db:"ingested_at"         json:"ingested_at"`
}

// HasQuantity reports whether the trigger carried a recognized quantity signal.
func (t *Trigger) HasQuantity() bool {
	return t.QuantitySignal > 0
}

// TriggerStats summarizes the active trigger population for the dashboard.
type TriggerStats struct {
	TotalActive  int            `json:"total_active"`
	BySourceType map[string]int `json:"by_source_type"`
	HighScore    int            `json:"high_score"` // active triggers with score >= 7
	TotalAllTime int            `json:"total_all_time"`
	Superseded   int            `json:"superseded"`
	TopCompanies map[string]int `json:"top_companies,omitempty"`
}
