package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceType identifies the monitor category an item came from.
type SourceType string

// Source type constants
const (
	SourceNews       SourceType = "news"
	SourceRegulatory SourceType = "regulatory"
	SourceTender     SourceType = "tender"
	SourceFinancial  SourceType = "financial"
)

// Valid reports whether the source type is one of the known monitor categories.
func (s SourceType) Valid() bool {
	switch s {
	case SourceNews, SourceRegulatory, SourceTender, SourceFinancial:
		return true
	default:
		return false
	}
}

// RawItem represents one normalized item produced by a monitor.
// It is the input to the trigger pipeline and is consumed exactly once.
type RawItem struct {
	Text          string     `json:"text"`
	Title         string     `json:"title"`
	SourceType    SourceType `json:"source_type"`
	SourceName    string     `json:"source_name,omitempty"` // e.g. "PharmaBiz RSS"
	SourceURL     string     `json:"source_url"`
	PublishedAt   time.Time  `json:"published_at"`
	RawIdentifier string     `json:"raw_identifier,omitempty"` // source-native id, if any
}

// Validate rejects items missing the fields the pipeline cannot score without.
// A failed item is dropped before scoring; validation never mutates the item.
func (r *RawItem) Validate() error {
	if strings.TrimSpace(r.Text) == "" && strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: empty text and title", ErrMalformedItem)
	}
	if !r.SourceType.Valid() {
		return fmt.Errorf("%w: unknown source type %q", ErrMalformedItem, r.SourceType)
	}
	return nil
}

// Body returns the title and text joined for analysis.
func (r *RawItem) Body() string {
	if r.Title == "" {
		return r.Text
	}
	if r.Text == "" {
		return r.Title
	}
	return r.Title + " " + r.Text
}
