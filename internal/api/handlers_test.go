package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/api"
	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
	"github.com/jonesrussell/pharma-triggers/internal/pipeline"
	"github.com/jonesrussell/pharma-triggers/internal/storage"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.SetDefaults()
	log := logger.NewNop()
	store := storage.NewMemoryStore()

	deps := pipeline.Dependencies{
		Keywords:  analyzer.NewKeywordMatcher(cfg.Taxonomy, log),
		Sentiment: analyzer.NewSentimentScorer(cfg.Sentiment),
		Quantity:  analyzer.NewQuantityExtractor(cfg.Quantity),
		Entity:    analyzer.NewEntityExtractor(),
		Scorer:    trigger.NewScorer(cfg.Scoring, log),
		Dedup:     trigger.NewDeduplicator(store, log),
		Logger:    log,
	}
	p := pipeline.New(deps, cfg.Dedup.Bucket)
	batch := pipeline.NewBatchProcessor(p, 2, log)
	handler := api.NewHandler(p, batch, store, nil, log, "triggerd", "test")

	router := gin.New()
	api.SetupRoutes(router, handler)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestIngestItem(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/items", domain.RawItem{
		Text:        "Acme Pharma announces $50 million capacity expansion",
		SourceType:  domain.SourceNews,
		PublishedAt: time.Now().Add(-1 * time.Hour),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp api.IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Decision != string(trigger.DecisionInserted) {
		t.Errorf("expected inserted, got %s", resp.Decision)
	}
	if resp.Trigger == nil || resp.Trigger.TriggerScore < 7 {
		t.Errorf("expected a high-scoring trigger, got %+v", resp.Trigger)
	}
}

func TestIngestItem_NoMatch(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/items", domain.RawItem{
		Text:        "Board meeting adjourned without incident",
		SourceType:  domain.SourceNews,
		PublishedAt: time.Now(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp api.IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Decision != "no_match" || resp.Trigger != nil {
		t.Errorf("expected no_match without trigger, got %+v", resp)
	}
}

func TestIngestItem_Malformed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/items", domain.RawItem{
		Text:       "some text",
		SourceType: "carrier-pigeon",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown source type, got %d", w.Code)
	}
}

func TestIngestBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/items/batch", api.BatchIngestRequest{
		Items: []domain.RawItem{
			{
				Text:        "Acme Pharma announces capacity expansion",
				SourceType:  domain.SourceNews,
				PublishedAt: time.Now().Add(-1 * time.Hour),
			},
			{
				Text:        "Acme Pharma announces capacity expansion",
				SourceType:  domain.SourceNews,
				PublishedAt: time.Now().Add(-1 * time.Hour),
			},
			{
				Text:        "Nothing to see here",
				SourceType:  domain.SourceNews,
				PublishedAt: time.Now(),
			},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp api.BatchIngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 {
		t.Errorf("expected total 3, got %d", resp.Total)
	}
	if resp.Inserted != 1 || resp.Discarded != 1 || resp.NoMatch != 1 {
		t.Errorf("expected 1 inserted / 1 discarded / 1 no-match, got %+v", resp)
	}
}

func TestIngestBatch_EmptyRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/items/batch", api.BatchIngestRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", w.Code)
	}
}

func TestListTriggers(t *testing.T) {
	router, store := newTestRouter(t)
	seedTriggers(t, store)

	w := doJSON(t, router, http.MethodGet, "/api/v1/triggers?min_score=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp api.TriggersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 trigger at min_score=7, got %d", resp.Total)
	}
}

func TestListTriggers_BadQuery(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/triggers?source_type=telegraph",
		"/api/v1/triggers?min_score=99",
		"/api/v1/triggers?limit=-1",
	} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGetStats(t *testing.T) {
	router, store := newTestRouter(t)
	seedTriggers(t, store)

	w := doJSON(t, router, http.MethodGet, "/api/v1/triggers/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats domain.TriggerStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalActive != 2 {
		t.Errorf("expected 2 active, got %d", stats.TotalActive)
	}
}

func TestExportCSV(t *testing.T) {
	router, store := newTestRouter(t)
	seedTriggers(t, store)

	w := doJSON(t, router, http.MethodGet, "/api/v1/export/csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("response is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected header + 2 rows, got %d", len(records))
	}
}

func seedTriggers(t *testing.T, store *storage.MemoryStore) {
	t.Helper()
	for _, tr := range []*domain.Trigger{
		{
			SourceType:         domain.SourceNews,
			CompanyName:        "Acme Pharma",
			MatchedKeywords:    []string{"capacity expansion"},
			TriggerScore:       8,
			ContentFingerprint: "fp-a",
			Status:             domain.StatusActive,
			PublishedAt:        time.Now(),
		},
		{
			SourceType:         domain.SourceRegulatory,
			CompanyName:        "Zenith Laboratories",
			MatchedKeywords:    []string{"warning letter"},
			TriggerScore:       5,
			ContentFingerprint: "fp-b",
			Status:             domain.StatusActive,
			PublishedAt:        time.Now(),
		},
	} {
		if _, err := store.Insert(context.Background(), tr); err != nil {
			t.Fatal(err)
		}
	}
}
