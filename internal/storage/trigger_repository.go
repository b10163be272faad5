package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

// HighScoreThreshold marks a trigger as hot in stats and reports.
const HighScoreThreshold = 7

const topCompanyLimit = 10

// TriggerRepository is the sqlite implementation of TriggerStore.
type TriggerRepository struct {
	db *sqlx.DB
}

// NewTriggerRepository creates a trigger repository on an open database.
func NewTriggerRepository(db *sqlx.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

var _ TriggerStore = (*TriggerRepository)(nil)

// triggerRow mirrors the triggers table. Keywords travel as a JSON array
// in a TEXT column.
type triggerRow struct {
	ID                 int64                `db:"id"`
	SourceType         string               `db:"source_type"`
	SourceName         string               `db:"source_name"`
	Title              string               `db:"title"`
	SourceURL          string               `db:"source_url"`
	CompanyName        string               `db:"company_name"`
	MatchedKeywords    string               `db:"matched_keywords"`
	TriggerScore       int                  `db:"trigger_score"`
	SentimentScore     float64              `db:"sentiment_score"`
	QuantitySignal     float64              `db:"quantity_signal"`
	ContentFingerprint string               `db:"content_fingerprint"`
	Status             domain.TriggerStatus `db:"status"`
	Supersedes         int64                `db:"supersedes"`
	PublishedAt        sql.NullTime         `db:"published_at"`
	IngestedAt         time.Time            `db:"ingested_at"`
}

const triggerColumns = `id, source_type, source_name, title, source_url, company_name,
	matched_keywords, trigger_score, sentiment_score, quantity_signal,
	content_fingerprint, status, supersedes, published_at, ingested_at`

// Insert persists a trigger and returns its assigned id.
func (r *TriggerRepository) Insert(ctx context.Context, t *domain.Trigger) (int64, error) {
	keywords, err := json.Marshal(t.MatchedKeywords)
	if err != nil {
		return 0, fmt.Errorf("failed to encode keywords: %w", err)
	}

	query := `
		INSERT INTO triggers (
			source_type, source_name, title, source_url, company_name,
			matched_keywords, trigger_score, sentiment_score, quantity_signal,
			content_fingerprint, status, supersedes, published_at, ingested_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		string(t.SourceType),
		t.SourceName,
		t.Title,
		t.SourceURL,
		t.CompanyName,
		string(keywords),
		t.TriggerScore,
		t.SentimentScore,
		t.QuantitySignal,
		t.ContentFingerprint,
		string(t.Status),
		t.Supersedes,
		nullableTime(t.PublishedAt),
		t.IngestedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert trigger: %w", domain.ErrStorageUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read trigger id: %w", domain.ErrStorageUnavailable, err)
	}
	return id, nil
}

// FindActiveByFingerprint returns the active trigger carrying the
// fingerprint, or (nil, nil) when none exists.
func (r *TriggerRepository) FindActiveByFingerprint(ctx context.Context, fingerprint string) (*domain.Trigger, error) {
	query := `
		SELECT ` + triggerColumns + `
		FROM triggers
		WHERE content_fingerprint = ? AND status = 'active'
		ORDER BY id DESC
		LIMIT 1
	`

	var row triggerRow
	err := r.db.GetContext(ctx, &row, query, fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up fingerprint: %w", domain.ErrStorageUnavailable, err)
	}

	return row.toDomain()
}

// MarkSuperseded transitions an active trigger to superseded.
func (r *TriggerRepository) MarkSuperseded(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE triggers SET status = 'superseded' WHERE id = ? AND status = 'active'`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to supersede trigger %d: %w", domain.ErrStorageUnavailable, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read supersede result: %w", domain.ErrStorageUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("trigger %d is not active", id)
	}
	return nil
}

// ListActive returns active triggers, hottest first: score descending,
// then more negative sentiment, then newest publish date.
func (r *TriggerRepository) ListActive(ctx context.Context, filter ListFilter) ([]*domain.Trigger, error) {
	var (
		conds = []string{"status = 'active'"}
		args  []any
	)
	if filter.SourceType != "" {
		conds = append(conds, "source_type = ?")
		args = append(args, string(filter.SourceType))
	}
	if filter.MinScore > 0 {
		conds = append(conds, "trigger_score >= ?")
		args = append(args, filter.MinScore)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	query := `
		SELECT ` + triggerColumns + `
		FROM triggers
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY trigger_score DESC, sentiment_score ASC, published_at DESC
		LIMIT ?
	`

	var rows []triggerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to list triggers: %w", domain.ErrStorageUnavailable, err)
	}

	out := make([]*domain.Trigger, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Stats summarizes the trigger population for the dashboard.
func (r *TriggerRepository) Stats(ctx context.Context) (*domain.TriggerStats, error) {
	stats := &domain.TriggerStats{
		BySourceType: make(map[string]int),
		TopCompanies: make(map[string]int),
	}

	summary := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN status = 'superseded' THEN 1 ELSE 0 END), 0) AS superseded,
			COALESCE(SUM(CASE WHEN status = 'active' AND trigger_score >= ? THEN 1 ELSE 0 END), 0) AS high
		FROM triggers
	`
	var agg struct {
		Total      int `db:"total"`
		Active     int `db:"active"`
		Superseded int `db:"superseded"`
		High       int `db:"high"`
	}
	if err := r.db.GetContext(ctx, &agg, summary, HighScoreThreshold); err != nil {
		return nil, fmt.Errorf("%w: failed to read trigger stats: %w", domain.ErrStorageUnavailable, err)
	}
	stats.TotalAllTime = agg.Total
	stats.TotalActive = agg.Active
	stats.Superseded = agg.Superseded
	stats.HighScore = agg.High

	type bucketCount struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}

	var bySource []bucketCount
	if err := r.db.SelectContext(ctx, &bySource,
		`SELECT source_type AS key, COUNT(*) AS count
		 FROM triggers WHERE status = 'active' GROUP BY source_type`); err != nil {
		return nil, fmt.Errorf("%w: failed to read source stats: %w", domain.ErrStorageUnavailable, err)
	}
	for _, b := range bySource {
		stats.BySourceType[b.Key] = b.Count
	}

	var byCompany []bucketCount
	if err := r.db.SelectContext(ctx, &byCompany,
		`SELECT company_name AS key, COUNT(*) AS count
		 FROM triggers
		 WHERE status = 'active' AND company_name != ''
		 GROUP BY company_name
		 ORDER BY count DESC
		 LIMIT ?`, topCompanyLimit); err != nil {
		return nil, fmt.Errorf("%w: failed to read company stats: %w", domain.ErrStorageUnavailable, err)
	}
	for _, b := range byCompany {
		stats.TopCompanies[b.Key] = b.Count
	}

	return stats, nil
}

func (row *triggerRow) toDomain() (*domain.Trigger, error) {
	var keywords []string
	if row.MatchedKeywords != "" {
		if err := json.Unmarshal([]byte(row.MatchedKeywords), &keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords for trigger %d: %w", row.ID, err)
		}
	}

	t := &domain.Trigger{
		ID:                 row.ID,
		SourceType:         domain.SourceType(row.SourceType),
		SourceName:         row.SourceName,
		Title:              row.Title,
		SourceURL:          row.SourceURL,
		CompanyName:        row.CompanyName,
		MatchedKeywords:    keywords,
		TriggerScore:       row.TriggerScore,
		SentimentScore:     row.SentimentScore,
		QuantitySignal:     row.QuantitySignal,
		ContentFingerprint: row.ContentFingerprint,
		Status:             row.Status,
		Supersedes:         row.Supersedes,
		IngestedAt:         row.IngestedAt,
	}
	if row.PublishedAt.Valid {
		t.PublishedAt = row.PublishedAt.Time
	}
	return t, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
