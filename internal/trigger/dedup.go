// dedup.go enforces at most one active trigger per fingerprint.
package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

// Decision is the outcome of running a candidate through deduplication.
type Decision string

// Dedup decisions
const (
	DecisionInserted   Decision = "inserted"
	DecisionDiscarded  Decision = "discarded"
	DecisionSuperseded Decision = "superseded"
)

// Store is the slice of the trigger store the deduplicator needs.
type Store interface {
	// FindActiveByFingerprint returns the active trigger with the given
	// fingerprint, or (nil, nil) when there is none.
	FindActiveByFingerprint(ctx context.Context, fingerprint string) (*domain.Trigger, error)
	Insert(ctx context.Context, t *domain.Trigger) (int64, error)
	MarkSuperseded(ctx context.Context, id int64) error
}

const lockStripes = 64

// Deduplicator serializes the read-decide-write sequence per fingerprint.
// Two workers carrying the same fingerprint contend on the same stripe, so
// one of them always sees the other's insert.
type Deduplicator struct {
	store  Store
	locks  [lockStripes]sync.Mutex
	logger logger.Logger
}

// NewDeduplicator wraps a store with per-fingerprint serialization.
func NewDeduplicator(store Store, log logger.Logger) *Deduplicator {
	return &Deduplicator{store: store, logger: log}
}

// Apply runs the candidate through dedup and persists the outcome:
//
//   - no active trigger with this fingerprint: insert, DecisionInserted
//   - existing at least as informative: nothing persisted, DecisionDiscarded
//   - candidate strictly more informative: demote the existing row, insert
//     the candidate pointing at it, DecisionSuperseded
//
// The demote happens before the insert so a failure between the two leaves
// zero active rows for the fingerprint, never two. On success cand.ID and
// cand.Status reflect the persisted state.
func (d *Deduplicator) Apply(ctx context.Context, cand *domain.Trigger) (Decision, error) {
	mu := &d.locks[stripeFor(cand.ContentFingerprint)]
	mu.Lock()
	defer mu.Unlock()

	existing, err := d.store.FindActiveByFingerprint(ctx, cand.ContentFingerprint)
	if err != nil {
		return "", fmt.Errorf("dedup lookup: %w", err)
	}

	if existing == nil {
		id, err := d.store.Insert(ctx, cand)
		if err != nil {
			return "", fmt.Errorf("insert trigger: %w", err)
		}
		cand.ID = id
		return DecisionInserted, nil
	}

	if !moreInformative(cand, existing) {
		cand.Status = domain.StatusDiscarded
		if d.logger != nil {
			d.logger.Debug("duplicate discarded",
				logger.String("fingerprint", cand.ContentFingerprint),
				logger.Int64("existing_id", existing.ID))
		}
		return DecisionDiscarded, nil
	}

	if err := d.store.MarkSuperseded(ctx, existing.ID); err != nil {
		return "", fmt.Errorf("demote trigger %d: %w", existing.ID, err)
	}
	cand.Supersedes = existing.ID
	id, err := d.store.Insert(ctx, cand)
	if err != nil {
		return "", fmt.Errorf("insert superseding trigger: %w", err)
	}
	cand.ID = id

	if d.logger != nil {
		d.logger.Info("trigger superseded",
			logger.String("fingerprint", cand.ContentFingerprint),
			logger.Int64("old_id", existing.ID),
			logger.Int64("new_id", id))
	}
	return DecisionSuperseded, nil
}

// moreInformative reports whether the candidate strictly beats the existing
// trigger: more matched phrases, then a quantity signal the other lacks,
// then a strictly newer publish date. An exact tie keeps the existing row.
func moreInformative(cand, existing *domain.Trigger) bool {
	if len(cand.MatchedKeywords) != len(existing.MatchedKeywords) {
		return len(cand.MatchedKeywords) > len(existing.MatchedKeywords)
	}
	if cand.HasQuantity() != existing.HasQuantity() {
		return cand.HasQuantity()
	}
	return cand.PublishedAt.After(existing.PublishedAt)
}

func stripeFor(fingerprint string) uint64 {
	return xxhash.Sum64String(fingerprint) % lockStripes
}
