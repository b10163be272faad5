package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/export"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
	"github.com/jonesrussell/pharma-triggers/internal/pipeline"
	"github.com/jonesrussell/pharma-triggers/internal/storage"
	"github.com/jonesrussell/pharma-triggers/internal/telemetry"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

// Handler handles HTTP requests for the trigger API.
type Handler struct {
	pipeline  *pipeline.Pipeline
	batch     *pipeline.BatchProcessor
	store     storage.TriggerStore
	telemetry *telemetry.Provider
	logger    logger.Logger
	service   string
	version   string
}

// NewHandler creates the API handler.
func NewHandler(p *pipeline.Pipeline, batch *pipeline.BatchProcessor, store storage.TriggerStore, tp *telemetry.Provider, log logger.Logger, service, version string) *Handler {
	return &Handler{
		pipeline:  p,
		batch:     batch,
		store:     store,
		telemetry: tp,
		logger:    log,
		service:   service,
		version:   version,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
	})
}

// Metrics handles GET /metrics
func (h *Handler) Metrics(c *gin.Context) {
	if h.telemetry == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.telemetry.Handler().ServeHTTP(c.Writer, c.Request)
}

// IngestItem handles POST /api/v1/items
func (h *Handler) IngestItem(c *gin.Context) {
	var item domain.RawItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res := h.pipeline.Process(c.Request.Context(), item)
	switch {
	case res.Rejected():
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: res.Err.Error()})
	case errors.Is(res.Err, domain.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
	case res.Err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: res.Err.Error()})
	case res.Trigger == nil:
		c.JSON(http.StatusOK, IngestResponse{Decision: decisionNoMatch})
	default:
		c.JSON(http.StatusOK, IngestResponse{
			Decision: string(res.Decision),
			Trigger:  res.Trigger,
		})
	}
}

// IngestBatch handles POST /api/v1/items/batch
func (h *Handler) IngestBatch(c *gin.Context) {
	var req BatchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	results, err := h.batch.Process(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}

	resp := BatchIngestResponse{Total: len(results)}
	for _, res := range results {
		switch {
		case res.Rejected():
			resp.Rejected++
		case res.Trigger == nil:
			resp.NoMatch++
		default:
			switch res.Decision {
			case trigger.DecisionInserted:
				resp.Inserted++
			case trigger.DecisionSuperseded:
				resp.Superseded++
			case trigger.DecisionDiscarded:
				resp.Discarded++
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListTriggers handles GET /api/v1/triggers
func (h *Handler) ListTriggers(c *gin.Context) {
	filter, err := listFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	triggers, err := h.store.ListActive(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list triggers failed", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, TriggersResponse{Triggers: triggers, Total: len(triggers)})
}

// GetStats handles GET /api/v1/triggers/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats query failed", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportCSV handles GET /api/v1/export/csv
func (h *Handler) ExportCSV(c *gin.Context) {
	filter, err := listFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="triggers.csv"`)

	if _, err := export.WriteCSV(c.Request.Context(), c.Writer, h.store, filter); err != nil {
		// Headers are gone; log and bail.
		h.logger.Error("csv export failed", logger.Error(err))
	}
}

func listFilterFromQuery(c *gin.Context) (storage.ListFilter, error) {
	var filter storage.ListFilter

	if st := c.Query("source_type"); st != "" {
		source := domain.SourceType(st)
		if !source.Valid() {
			return filter, errors.New("unknown source_type " + strconv.Quote(st))
		}
		filter.SourceType = source
	}
	if ms := c.Query("min_score"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < domain.MinTriggerScore || n > domain.MaxTriggerScore {
			return filter, errors.New("min_score must be an integer between 1 and 10")
		}
		filter.MinScore = n
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = n
	}

	return filter, nil
}
