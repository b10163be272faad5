package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/export"
	"github.com/jonesrussell/pharma-triggers/internal/storage"
)

func seedStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	triggers := []*domain.Trigger{
		{
			SourceType:         domain.SourceNews,
			CompanyName:        "Acme Pharma",
			MatchedKeywords:    []string{"capacity expansion", "new manufacturing facility"},
			TriggerScore:       8,
			SentimentScore:     0.4,
			ContentFingerprint: "fp-a",
			Status:             domain.StatusActive,
			SourceURL:          "https://example.com/a",
			PublishedAt:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			SourceType:         domain.SourceRegulatory,
			CompanyName:        "Zenith Laboratories",
			MatchedKeywords:    []string{"warning letter"},
			TriggerScore:       6,
			SentimentScore:     -0.8,
			ContentFingerprint: "fp-b",
			Status:             domain.StatusActive,
			SourceURL:          "https://example.com/b",
		},
	}
	for _, tr := range triggers {
		if _, err := store.Insert(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestWriteCSV(t *testing.T) {
	store := seedStore(t)

	var buf bytes.Buffer
	n, err := export.WriteCSV(context.Background(), &buf, store, storage.ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	header := records[0]
	if header[0] != "id" || header[3] != "matched_keywords" || header[7] != "published_at" {
		t.Errorf("unexpected header: %v", header)
	}

	// Hottest first: score 8 before score 6.
	if records[1][1] != "8" || records[2][1] != "6" {
		t.Errorf("rows not ordered by score: %v / %v", records[1], records[2])
	}
	if records[1][3] != "capacity expansion; new manufacturing facility" {
		t.Errorf("keywords join: got %q", records[1][3])
	}
	if records[1][7] != "2026-03-10T09:00:00Z" {
		t.Errorf("published_at format: got %q", records[1][7])
	}
	if records[2][7] != "" {
		t.Errorf("undated trigger should export empty published_at, got %q", records[2][7])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	store := storage.NewMemoryStore()

	var buf bytes.Buffer
	n, err := export.WriteCSV(context.Background(), &buf, store, storage.ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil || len(records) != 1 {
		t.Errorf("expected header only, got %v (err %v)", records, err)
	}
}

func TestWriteCSV_MinScoreFilter(t *testing.T) {
	store := seedStore(t)

	var buf bytes.Buffer
	n, err := export.WriteCSV(context.Background(), &buf, store, storage.ListFilter{MinScore: 7})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 row at min score 7, got %d", n)
	}
}
