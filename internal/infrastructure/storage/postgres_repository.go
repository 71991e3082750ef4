package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewPool opens a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// PostgresRepository persists feed sources, entries, and analysis results.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ ports.SourceStore = (*PostgresRepository)(nil)
var _ ports.EntryStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pgx pool implementation.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListSources returns every configured feed source.
func (r *PostgresRepository) ListSources(ctx context.Context) ([]domain.FeedSource, error) {
	query, args, err := psql.Select("id", "url").
		From("rss_feed_sources").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.FeedSource
	for rows.Next() {
		var src domain.FeedSource
		if err := rows.Scan(&src.ID, &src.URL); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// LatestEntryByLink returns the newest stored entry sharing the given link,
// or nil when none exists.
func (r *PostgresRepository) LatestEntryByLink(ctx context.Context, link string) (*domain.Entry, error) {
	query, args, err := psql.Select("id", "title", "link", "published", "description", "feed_id", "processed").
		From("rss_feed_entries").
		Where(sq.Eq{"link": link}).
		OrderBy("published DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest-entry query: %w", err)
	}

	var entry domain.Entry
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&entry.ID,
		&entry.Title,
		&entry.Link,
		&entry.Published,
		&entry.Description,
		&entry.FeedID,
		&entry.Processed,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest entry: %w", err)
	}

	return &entry, nil
}

// InsertEntries stores freshly fetched entries and returns how many rows
// were written. New entries start unprocessed.
func (r *PostgresRepository) InsertEntries(ctx context.Context, entries []domain.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	builder := psql.Insert("rss_feed_entries").
		Columns("title", "link", "published", "description", "feed_id", "processed")
	for _, entry := range entries {
		builder = builder.Values(entry.Title, entry.Link, entry.Published, entry.Description, entry.FeedID, false)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert entries: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// CountUnprocessed reports how many entries still await enrichment.
func (r *PostgresRepository) CountUnprocessed(ctx context.Context) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("rss_feed_entries").
		Where(sq.Eq{"processed": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unprocessed: %w", err)
	}

	return count, nil
}

// FetchUnprocessed returns up to limit unprocessed entries in ascending
// identifier order.
func (r *PostgresRepository) FetchUnprocessed(ctx context.Context, limit int) ([]domain.Entry, error) {
	query, args, err := psql.Select("id", "title", "link", "published", "description", "feed_id", "processed").
		From("rss_feed_entries").
		Where(sq.Eq{"processed": false}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fetch query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Link,
			&entry.Published,
			&entry.Description,
			&entry.FeedID,
			&entry.Processed,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return entries, nil
}

// PersistBatch writes analysis results and flips the processed flag for every
// fetched entry id inside a single transaction. Any failure rolls the whole
// batch back so the entries stay eligible for a future run.
func (r *PostgresRepository) PersistBatch(ctx context.Context, results []domain.AnalysisResult, entryIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(results) > 0 {
		builder := psql.Insert("rss_feed_analysed").
			Columns("entry_id", "translated_title", "translated_description", "keywords", "sentiment", "category")
		for _, result := range results {
			keywords, err := json.Marshal(result.Keywords)
			if err != nil {
				return fmt.Errorf("marshal keywords for entry %d: %w", result.EntryID, err)
			}
			builder = builder.Values(
				result.EntryID,
				result.TranslatedTitle,
				result.TranslatedDescription,
				string(keywords),
				result.Sentiment,
				result.Category,
			)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("build results insert: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
	}

	if len(entryIDs) > 0 {
		query, args, err := psql.Update("rss_feed_entries").
			Set("processed", true).
			Where(sq.Eq{"id": entryIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build processed update: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("mark processed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}
