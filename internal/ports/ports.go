package ports

import (
	"context"
	"time"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
)

// SourceStore lists feed sources and persists freshly fetched entries.
type SourceStore interface {
	ListSources(ctx context.Context) ([]domain.FeedSource, error)
	LatestEntryByLink(ctx context.Context, link string) (*domain.Entry, error)
	InsertEntries(ctx context.Context, entries []domain.Entry) (int, error)
}

// EntryStore exposes the unprocessed-entry queue consumed by the analyser.
type EntryStore interface {
	CountUnprocessed(ctx context.Context) (int64, error)
	FetchUnprocessed(ctx context.Context, limit int) ([]domain.Entry, error)
	// PersistBatch inserts the results and marks every id in entryIDs as
	// processed within a single transaction. A returned error means the
	// transaction was rolled back and nothing was written.
	PersistBatch(ctx context.Context, results []domain.AnalysisResult, entryIDs []int64) error
}

// FeedReader fetches and parses one RSS/Atom feed into entries.
type FeedReader interface {
	Read(ctx context.Context, source domain.FeedSource) ([]domain.Entry, error)
}

// GenerationParams tune a single external generation call.
type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
}

// GenerativeClient sends a composed prompt to the external generation API
// and returns the raw response text.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// BatchProcessor turns a batch of entries into validated analysis results.
// A nil error with an empty slice means the batch was attempted but produced
// nothing to persist; a non-nil error means the external call failed hard.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, entries []domain.Entry) ([]domain.AnalysisResult, error)
}

// Notifier publishes run summaries to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
