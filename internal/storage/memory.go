package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

// MemoryStore is an in-memory TriggerStore used in tests and by the
// ephemeral run mode, where a scrape is scored and exported without
// touching disk.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Trigger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, rows: make(map[int64]*domain.Trigger)}
}

var _ TriggerStore = (*MemoryStore)(nil)

// Insert persists a copy of the trigger and returns its id.
func (m *MemoryStore) Insert(_ context.Context, t *domain.Trigger) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	cp := *t
	cp.ID = id
	cp.MatchedKeywords = append([]string(nil), t.MatchedKeywords...)
	m.rows[id] = &cp
	return id, nil
}

// FindActiveByFingerprint returns the active trigger with the fingerprint,
// or (nil, nil).
func (m *MemoryStore) FindActiveByFingerprint(_ context.Context, fingerprint string) (*domain.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.rows {
		if t.ContentFingerprint == fingerprint && t.Status == domain.StatusActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

// MarkSuperseded demotes an active trigger.
func (m *MemoryStore) MarkSuperseded(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok || row.Status != domain.StatusActive {
		return fmt.Errorf("trigger %d is not active", id)
	}
	row.Status = domain.StatusSuperseded
	return nil
}

// ListActive returns active triggers hottest-first.
func (m *MemoryStore) ListActive(_ context.Context, filter ListFilter) ([]*domain.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Trigger, 0, len(m.rows))
	for _, t := range m.rows {
		if t.Status != domain.StatusActive {
			continue
		}
		if filter.SourceType != "" && t.SourceType != filter.SourceType {
			continue
		}
		if filter.MinScore > 0 && t.TriggerScore < filter.MinScore {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return trigger.Less(out[i], out[j]) })

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats summarizes the stored triggers.
func (m *MemoryStore) Stats(_ context.Context) (*domain.TriggerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.TriggerStats{
		BySourceType: make(map[string]int),
		TopCompanies: make(map[string]int),
	}
	for _, t := range m.rows {
		stats.TotalAllTime++
		switch t.Status {
		case domain.StatusActive:
			stats.TotalActive++
			stats.BySourceType[string(t.SourceType)]++
			if t.TriggerScore >= HighScoreThreshold {
				stats.HighScore++
			}
			if t.CompanyName != "" {
				stats.TopCompanies[t.CompanyName]++
			}
		case domain.StatusSuperseded:
			stats.Superseded++
		}
	}
	return stats, nil
}
