// Package pipeline runs raw items through analysis, scoring, and
// deduplication, and records the outcome.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
	"github.com/jonesrussell/pharma-triggers/internal/telemetry"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

// Dependencies holds the collaborators a Pipeline needs. Telemetry may be
// nil; everything else is required.
type Dependencies struct {
	Keywords  *analyzer.KeywordMatcher
	Sentiment *analyzer.SentimentScorer
	Quantity  *analyzer.QuantityExtractor
	Entity    *analyzer.EntityExtractor
	Scorer    *trigger.Scorer
	Dedup     *trigger.Deduplicator
	Telemetry *telemetry.Provider
	Logger    logger.Logger
}

// Result is the outcome of processing one item. Exactly one of the three
// shapes holds: rejected (Err, no Trigger), no trigger phrases (neither),
// or decided (Trigger and Decision set).
type Result struct {
	Item     domain.RawItem
	Trigger  *domain.Trigger
	Decision trigger.Decision
	Err      error
}

// Rejected reports whether the item failed validation.
func (r *Result) Rejected() bool {
	return errors.Is(r.Err, domain.ErrMalformedItem)
}

// Pipeline is safe for concurrent use; all state is read-only after New.
type Pipeline struct {
	deps   Dependencies
	tracer trace.Tracer
	bucket string
	now    func() time.Time
}

// New assembles a pipeline. dedupBucket is the time granularity
// fingerprints bucket on (day, week, or month).
func New(deps Dependencies, dedupBucket string) *Pipeline {
	tracer := trace.Tracer(noop.NewTracerProvider().Tracer(""))
	if deps.Telemetry != nil {
		tracer = deps.Telemetry.Tracer
	}
	return &Pipeline{deps: deps, tracer: tracer, bucket: dedupBucket, now: time.Now}
}

// WithClock overrides the pipeline's clock. Tests pin it for stable
// recency scoring.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Process runs one item end to end. A storage failure surfaces in
// Result.Err wrapping ErrStorageUnavailable; every other outcome is a
// normal result. Items with no trigger phrases produce no trigger: an item
// about nothing is not an opportunity, whatever its source weight.
func (p *Pipeline) Process(ctx context.Context, item domain.RawItem) *Result {
	start := p.now()
	res := &Result{Item: item}

	if err := item.Validate(); err != nil {
		res.Err = err
		if p.deps.Telemetry != nil {
			p.deps.Telemetry.RecordRejected()
		}
		p.deps.Logger.Warn("item rejected",
			logger.String("source_type", string(item.SourceType)),
			logger.String("source_url", item.SourceURL),
			logger.Error(err))
		return res
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.process")
	defer span.End()

	body := item.Body()
	matches := p.deps.Keywords.Match(body)
	if len(matches) == 0 {
		p.deps.Logger.Debug("no trigger phrases",
			logger.String("source_url", item.SourceURL))
		return res
	}

	sentiment := p.deps.Sentiment.Score(body)
	quantities := p.deps.Quantity.Extract(body)
	company := p.deps.Entity.Extract(body)

	cand := p.deps.Scorer.Build(item, matches, quantities, sentiment, company, p.bucket, p.now())

	decision, err := p.deps.Dedup.Apply(ctx, cand)
	if err != nil {
		res.Err = err
		p.deps.Logger.Error("dedup failed",
			logger.String("fingerprint", cand.ContentFingerprint),
			logger.Error(err))
		return res
	}

	res.Trigger = cand
	res.Decision = decision

	if p.deps.Telemetry != nil {
		p.deps.Telemetry.RecordItem(string(item.SourceType), string(decision), p.now().Sub(start))
	}
	p.deps.Logger.Info("item processed",
		logger.String("source_type", string(item.SourceType)),
		logger.String("company", cand.CompanyName),
		logger.Int("score", cand.TriggerScore),
		logger.String("decision", string(decision)))

	return res
}
