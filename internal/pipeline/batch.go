// batch.go processes item batches in parallel with a worker pool.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

const defaultConcurrency = 4

// BatchProcessor fans a batch of items across a worker pool. Rejected and
// phrase-less items are per-item outcomes; a storage failure aborts the
// batch, because every subsequent item would fail the same way.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      logger.Logger
}

// NewBatchProcessor creates a batch processor with the given worker count.
func NewBatchProcessor(p *Pipeline, concurrency int, log logger.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchProcessor{pipeline: p, concurrency: concurrency, logger: log}
}

// Process runs the batch and returns one result per item, in completion
// order. The returned error is non-nil only when storage became
// unavailable; partial results up to that point are still returned.
func (b *BatchProcessor) Process(ctx context.Context, items []domain.RawItem) ([]*Result, error) {
	if len(items) == 0 {
		return []*Result{}, nil
	}

	start := time.Now()
	b.logger.Info("batch started",
		logger.Int("batch_size", len(items)),
		logger.Int("concurrency", b.concurrency))

	if tp := b.pipeline.deps.Telemetry; tp != nil {
		tp.RecordBatch(len(items))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan domain.RawItem, len(items))
	results := make(chan *Result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, cancel, jobs, results, &wg)
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]*Result, 0, len(items))
	var storageErr error
	summary := make(map[string]int)
	for res := range results {
		out = append(out, res)
		switch {
		case errors.Is(res.Err, domain.ErrStorageUnavailable):
			storageErr = res.Err
		case res.Rejected():
			summary["rejected"]++
		case res.Trigger == nil:
			summary["no_match"]++
		default:
			summary[string(res.Decision)]++
		}
	}

	b.logger.Info("batch complete",
		logger.Int("total", len(items)),
		logger.Int("inserted", summary["inserted"]),
		logger.Int("superseded", summary["superseded"]),
		logger.Int("discarded", summary["discarded"]),
		logger.Int("rejected", summary["rejected"]),
		logger.Int("no_match", summary["no_match"]),
		logger.Duration("duration", time.Since(start)))

	if storageErr != nil {
		return out, storageErr
	}
	return out, nil
}

// worker drains jobs until the channel closes or the batch is aborted.
func (b *BatchProcessor) worker(ctx context.Context, abort context.CancelFunc, jobs <-chan domain.RawItem, results chan<- *Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for item := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := b.pipeline.Process(ctx, item)
		results <- res

		if errors.Is(res.Err, domain.ErrStorageUnavailable) {
			b.logger.Error("storage unavailable, aborting batch", logger.Error(res.Err))
			abort()
			return
		}
	}
}
