// runner.go drives the pipeline from polled item sources.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

// ItemSource supplies batches of raw items. A source returns the items it
// has accumulated since the last fetch; an empty slice is a normal quiet
// poll. Fetched items stay pending at the source until Commit acknowledges
// them, so a failed batch is fetched again on the next poll.
type ItemSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawItem, error)
	Commit(ctx context.Context) error
}

// RunnerConfig holds runner tuning.
type RunnerConfig struct {
	PollInterval  time.Duration
	RatePerSecond float64
}

// Runner polls sources on a ticker and feeds their items through the batch
// processor, rate-limited so a large scrape cannot monopolize the store.
type Runner struct {
	sources []ItemSource
	batch   *BatchProcessor
	limiter *rate.Limiter
	logger  logger.Logger

	pollInterval time.Duration
	stopChan     chan struct{}
	running      atomic.Bool
}

// NewRunner creates a runner over the given sources.
func NewRunner(sources []ItemSource, batch *BatchProcessor, cfg RunnerConfig, log logger.Logger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Runner{
		sources:      sources,
		batch:        batch,
		limiter:      rate.NewLimiter(limit, burstFor(limit)),
		logger:       log,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

func burstFor(limit rate.Limit) int {
	if limit == rate.Inf {
		return 1
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	return burst
}

// Start launches the polling loop. It returns immediately; the loop runs
// until Stop or context cancellation.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("runner is already running")
	}

	r.logger.Info("runner starting",
		logger.Int("sources", len(r.sources)),
		logger.Duration("poll_interval", r.pollInterval))

	go r.run(ctx)
	return nil
}

// Stop halts the polling loop. Safe to call from any goroutine; repeated
// calls are no-ops.
func (r *Runner) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.logger.Info("runner stopping")
	close(r.stopChan)
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Drain sources once at startup; a restart should not wait a full
	// interval to pick up spooled items.
	r.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped", logger.Error(ctx.Err()))
			return
		case <-r.stopChan:
			r.logger.Info("runner stopped")
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

// poll fetches and processes every source once. Source and storage errors
// are logged and the next tick retries; one broken source must not starve
// the others. Sources are committed only after their batch persisted, so a
// storage failure leaves the items pending for the next poll instead of
// dropping them.
func (r *Runner) poll(ctx context.Context) {
	runID := uuid.NewString()

	for _, src := range r.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			r.logger.Error("source fetch failed",
				logger.String("run_id", runID),
				logger.String("source", src.Name()),
				logger.Error(err))
			continue
		}
		if len(items) == 0 {
			// Files that yielded nothing (all lines malformed) still
			// need retiring or they would be re-read forever.
			r.commit(ctx, runID, src)
			continue
		}

		if err := r.reserve(ctx, len(items)); err != nil {
			return
		}

		r.logger.Info("processing source batch",
			logger.String("run_id", runID),
			logger.String("source", src.Name()),
			logger.Int("items", len(items)))

		if _, err := r.batch.Process(ctx, items); err != nil {
			r.logger.Error("source batch failed, items left pending for retry",
				logger.String("run_id", runID),
				logger.String("source", src.Name()),
				logger.Error(err))
			continue
		}
		r.commit(ctx, runID, src)
	}
}

func (r *Runner) commit(ctx context.Context, runID string, src ItemSource) {
	if err := src.Commit(ctx); err != nil {
		r.logger.Error("source commit failed",
			logger.String("run_id", runID),
			logger.String("source", src.Name()),
			logger.Error(err))
	}
}

// reserve acquires n tokens in burst-sized chunks, since WaitN rejects
// requests larger than the limiter's burst.
func (r *Runner) reserve(ctx context.Context, n int) error {
	burst := r.limiter.Burst()
	for n > 0 {
		take := n
		if take > burst {
			take = burst
		}
		if err := r.limiter.WaitN(ctx, take); err != nil {
			return err
		}
		n -= take
	}
	return nil
}
