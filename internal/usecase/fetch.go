package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
)

// FetchPipelineDeps wires the fetcher's collaborators.
type FetchPipelineDeps struct {
	Store        ports.SourceStore
	Reader       ports.FeedReader
	Logger       *slog.Logger
	PerFeedLimit int
}

// FetchPipeline polls every configured source, keeps the newest items,
// deduplicates against storage, and inserts the remainder.
type FetchPipeline struct {
	store        ports.SourceStore
	reader       ports.FeedReader
	logger       *slog.Logger
	perFeedLimit int
}

// NewFetchPipeline constructs the fetcher orchestration.
func NewFetchPipeline(deps FetchPipelineDeps) *FetchPipeline {
	limit := deps.PerFeedLimit
	if limit <= 0 {
		limit = 20
	}

	return &FetchPipeline{
		store:        deps.Store,
		reader:       deps.Reader,
		logger:       deps.Logger,
		perFeedLimit: limit,
	}
}

// Run performs one polling pass over all sources. A failing source is logged
// and skipped; it never aborts the pass.
func (f *FetchPipeline) Run(ctx context.Context) error {
	sources, err := f.store.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	for _, source := range sources {
		if err := f.processSource(ctx, source); err != nil {
			f.error("source failed", "url", source.URL, "error", err)
		}
	}

	return nil
}

func (f *FetchPipeline) processSource(ctx context.Context, source domain.FeedSource) error {
	entries, err := f.reader.Read(ctx, source)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}

	fresh, err := f.selectNew(ctx, entries)
	if err != nil {
		return fmt.Errorf("deduplicate: %w", err)
	}

	inserted, err := f.store.InsertEntries(ctx, fresh)
	if err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	f.info("processed source", "url", source.URL, "items", len(entries), "inserted", inserted)
	return nil
}

// selectNew orders entries newest first, keeps the per-feed limit, and drops
// anything whose link is already stored with an equal or newer publication
// time.
func (f *FetchPipeline) selectNew(ctx context.Context, entries []domain.Entry) ([]domain.Entry, error) {
	sorted := make([]domain.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.After(sorted[j].Published)
	})

	if len(sorted) > f.perFeedLimit {
		sorted = sorted[:f.perFeedLimit]
	}

	fresh := make([]domain.Entry, 0, len(sorted))
	for _, entry := range sorted {
		latest, err := f.store.LatestEntryByLink(ctx, entry.Link)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", entry.Link, err)
		}
		if latest == nil || entry.Published.After(latest.Published) {
			fresh = append(fresh, entry)
		}
	}

	return fresh, nil
}

func (f *FetchPipeline) info(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f *FetchPipeline) error(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Error(msg, args...)
	}
}
