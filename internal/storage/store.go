// Package storage provides sqlite persistence for triggers.
package storage

import (
	"context"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

// TriggerStore is the persistence contract the dedup layer and API depend
// on. Implementations must be safe for concurrent use.
type TriggerStore interface {
	// FindActiveByFingerprint returns the active trigger carrying the
	// fingerprint, or (nil, nil) when none exists. Absence is not an error.
	FindActiveByFingerprint(ctx context.Context, fingerprint string) (*domain.Trigger, error)

	// Insert persists a trigger and returns its assigned id.
	Insert(ctx context.Context, t *domain.Trigger) (int64, error)

	// MarkSuperseded transitions an active trigger to superseded. It is the
	// only mutation the store permits after insert.
	MarkSuperseded(ctx context.Context, id int64) error

	// ListActive returns active triggers ordered hottest-first.
	ListActive(ctx context.Context, filter ListFilter) ([]*domain.Trigger, error)

	// Stats summarizes the trigger population.
	Stats(ctx context.Context) (*domain.TriggerStats, error)
}

// ListFilter narrows ListActive results. Zero values mean no constraint.
type ListFilter struct {
	SourceType domain.SourceType
	MinScore   int
	Limit      int
}

// DefaultListLimit caps unbounded list queries.
const DefaultListLimit = 100
