package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
)

// validateResponse decodes the cleaned response text and resolves it to
// per-item outcomes. The text must decode to a JSON array of objects; any
// other top-level shape is a batch-level failure. Per-item problems never
// fail the batch: missing optional fields are defaulted, type mismatches and
// unmappable positions produce skip outcomes.
func validateResponse(cleaned string, index map[int]int64, batchLen int) ([]domain.ItemOutcome, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	limit := len(items)
	if limit > batchLen {
		limit = batchLen
	}

	outcomes := make([]domain.ItemOutcome, 0, limit)
	for i := 0; i < limit; i++ {
		entryID, ok := index[i+1]
		if !ok {
			outcomes = append(outcomes, domain.ItemOutcome{Skipped: domain.SkipUnmappedIndex})
			continue
		}
		outcomes = append(outcomes, validateItem(items[i], entryID))
	}

	return outcomes, nil
}

func validateItem(raw json.RawMessage, entryID int64) domain.ItemOutcome {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.ItemOutcome{EntryID: entryID, Skipped: domain.SkipNotObject}
	}

	result := domain.AnalysisResult{EntryID: entryID, Keywords: []string{}}

	stringFields := []struct {
		name string
		dst  *string
	}{
		{"translated_title", &result.TranslatedTitle},
		{"translated_description", &result.TranslatedDescription},
		{"sentiment", &result.Sentiment},
		{"category", &result.Category},
	}

	for _, f := range stringFields {
		raw, present := fields[f.name]
		if !present || isJSONNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return domain.ItemOutcome{EntryID: entryID, Skipped: domain.SkipBadField, Field: f.name}
		}
	}

	if raw, present := fields["keywords"]; present && !isJSONNull(raw) {
		if err := json.Unmarshal(raw, &result.Keywords); err != nil {
			return domain.ItemOutcome{EntryID: entryID, Skipped: domain.SkipBadField, Field: "keywords"}
		}
	}

	return domain.ItemOutcome{EntryID: entryID, Result: result}
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
