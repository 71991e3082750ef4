package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mahee-dev/automated-news-scripts/internal/ports"
	"github.com/mahee-dev/automated-news-scripts/internal/ratelimit"
	"github.com/mahee-dev/automated-news-scripts/pkg/progress"
)

// EnricherDeps wires the enrichment loop's collaborators.
type EnricherDeps struct {
	Store      ports.EntryStore
	Processor  ports.BatchProcessor
	Pacer      *ratelimit.Pacer
	Notifier   ports.Notifier
	Logger     *slog.Logger
	BatchSize  int
	MaxRuntime time.Duration
}

// Enricher drives the batch enrichment loop: poll unprocessed entries, gate
// on the rate limiter, process, persist, repeat until the queue is empty or
// the runtime ceiling is hit.
type Enricher struct {
	store      ports.EntryStore
	processor  ports.BatchProcessor
	pacer      *ratelimit.Pacer
	notifier   ports.Notifier
	logger     *slog.Logger
	batchSize  int
	maxRuntime time.Duration
}

// NewEnricher constructs the orchestrator.
func NewEnricher(deps EnricherDeps) *Enricher {
	batchSize := deps.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	return &Enricher{
		store:      deps.Store,
		processor:  deps.Processor,
		pacer:      deps.Pacer,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		batchSize:  batchSize,
		maxRuntime: deps.MaxRuntime,
	}
}

// Run executes a single enrichment pass. Batch-level failures are logged and
// the loop continues; only startup problems (counting the queue) are
// returned as errors. Every fetched entry is marked processed whether or not
// its analysis succeeded, so a permanently unanalysable entry can never
// block the queue.
func (e *Enricher) Run(ctx context.Context) error {
	start := time.Now()

	total, err := e.store.CountUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("count unprocessed: %w", err)
	}
	e.info("found unprocessed entries", "count", total)

	reporter := progress.New(e.logger, total)

	for {
		if e.maxRuntime > 0 && time.Since(start) > e.maxRuntime {
			e.warn("maximum runtime exceeded, exiting", "max_runtime", e.maxRuntime)
			break
		}

		entries, err := e.store.FetchUnprocessed(ctx, e.batchSize)
		if err != nil {
			e.error("fetch batch failed, ending run", "error", err)
			break
		}
		if len(entries) == 0 {
			e.info("no more entries to process")
			break
		}

		ids := make([]int64, len(entries))
		for i, entry := range entries {
			ids[i] = entry.ID
		}

		if err := e.pacer.Wait(ctx); err != nil {
			e.error("rate limit wait interrupted, ending run", "error", err)
			break
		}

		results, err := e.processor.ProcessBatch(ctx, entries)
		if err != nil {
			e.error("batch processing failed, persisting nothing for this batch", "error", err)
			results = nil
		}

		if err := e.store.PersistBatch(ctx, results, ids); err != nil {
			e.error("persist failed, batch rolled back and left unprocessed", "error", err)
			continue
		}

		reporter.Add(len(entries))
	}

	e.info("processing finished", "processed_in_run", reporter.Done())
	e.notifyRunSummary(ctx, reporter.Done(), total)

	return nil
}

func (e *Enricher) notifyRunSummary(ctx context.Context, processed, total int64) {
	if e.notifier == nil {
		return
	}

	digest := fmt.Sprintf("Enrichment run finished: %d of %d unprocessed entries handled.", processed, total)
	if err := e.notifier.PublishDigest(ctx, digest); err != nil {
		e.warn("run summary notification failed", "error", err)
	}
}

func (e *Enricher) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Enricher) error(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}
