package domain

import "time"

// FeedSource is a configured RSS feed polled by the fetcher.
type FeedSource struct {
	ID  int64
	URL string
}

// Entry is one ingested feed item awaiting or having undergone enrichment.
// Title and Description are nullable in storage; nil means the feed omitted them.
type Entry struct {
	ID          int64
	Title       *string
	Link        string
	Published   time.Time
	Description *string
	FeedID      int64
	Processed   bool
}

// AnalysisResult is the structured enrichment output for one Entry.
// Keywords are persisted as a JSON-encoded array in a text column.
type AnalysisResult struct {
	EntryID               int64
	TranslatedTitle       string
	TranslatedDescription string
	Keywords              []string
	Sentiment             string
	Category              string
}

// SkipReason explains why a decoded response item produced no result.
type SkipReason string

const (
	SkipUnmappedIndex SkipReason = "unmapped index"
	SkipNotObject     SkipReason = "not an object"
	SkipBadField      SkipReason = "field type mismatch"
)

// ItemOutcome is the per-item verdict of response validation. Exactly one of
// Result (Skipped == "") or Skipped is meaningful.
type ItemOutcome struct {
	EntryID int64
	Result  AnalysisResult
	Skipped SkipReason
	Field   string
}

// OK reports whether the item validated successfully.
func (o ItemOutcome) OK() bool {
	return o.Skipped == ""
}
