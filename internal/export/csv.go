// Package export renders active triggers for humans: today that means the
// CSV handed to the business development team.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/storage"
)

// ActiveLister is the read-side slice of the store the exporter needs.
type ActiveLister interface {
	ListActive(ctx context.Context, filter storage.ListFilter) ([]*domain.Trigger, error)
}

var csvHeader = []string{
	"id", "trigger_score", "sentiment_score", "matched_keywords",
	"company_name", "source_type", "source_url", "published_at",
}

// WriteCSV streams active triggers to w, hottest first, and returns the
// number of data rows written. Keywords are joined with "; " so the column
// survives spreadsheet imports.
func WriteCSV(ctx context.Context, w io.Writer, store ActiveLister, filter storage.ListFilter) (int, error) {
	triggers, err := store.ListActive(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to list triggers for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, t := range triggers {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			strconv.Itoa(t.TriggerScore),
			strconv.FormatFloat(t.SentimentScore, 'f', 3, 64),
			strings.Join(t.MatchedKeywords, "; "),
			t.CompanyName,
			string(t.SourceType),
			t.SourceURL,
			formatPublished(t.PublishedAt),
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(triggers), fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(triggers), nil
}

func formatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
