package api

import (
	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

// IngestResponse is the outcome of ingesting a single item.
type IngestResponse struct {
	Decision string          `json:"decision"` // inserted, superseded, discarded, no_match
	Trigger  *domain.Trigger `json:"trigger,omitempty"`
}

// BatchIngestRequest carries a batch of raw items.
type BatchIngestRequest struct {
	Items []domain.RawItem `json:"items" binding:"required,min=1,max=500"`
}

// BatchIngestResponse summarizes a processed batch.
type BatchIngestResponse struct {
	Total      int `json:"total"`
	Inserted   int `json:"inserted"`
	Superseded int `json:"superseded"`
	Discarded  int `json:"discarded"`
	Rejected   int `json:"rejected"`
	NoMatch    int `json:"no_match"`
}

// TriggersResponse is the active trigger list.
type TriggersResponse struct {
	Triggers []*domain.Trigger `json:"triggers"`
	Total    int               `json:"total"`
}

// ErrorResponse carries an error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// decisionNoMatch is reported when an item carried no trigger phrases.
const decisionNoMatch = "no_match"
