package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mahee-dev/automated-news-scripts/internal/analysis"
	"github.com/mahee-dev/automated-news-scripts/internal/domain"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
	"github.com/mahee-dev/automated-news-scripts/internal/ratelimit"
)

type fakeEntryStore struct {
	entries      []domain.Entry
	persistErrs  []error
	fetchCalls   int
	persistCalls int
	inserted     [][]domain.AnalysisResult
}

func (s *fakeEntryStore) CountUnprocessed(context.Context) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if !e.Processed {
			n++
		}
	}
	return n, nil
}

func (s *fakeEntryStore) FetchUnprocessed(_ context.Context, limit int) ([]domain.Entry, error) {
	s.fetchCalls++
	var batch []domain.Entry
	for _, e := range s.entries {
		if e.Processed {
			continue
		}
		batch = append(batch, e)
		if len(batch) == limit {
			break
		}
	}
	return batch, nil
}

func (s *fakeEntryStore) PersistBatch(_ context.Context, results []domain.AnalysisResult, entryIDs []int64) error {
	s.persistCalls++
	if len(s.persistErrs) > 0 {
		err := s.persistErrs[0]
		s.persistErrs = s.persistErrs[1:]
		if err != nil {
			return err
		}
	}

	s.inserted = append(s.inserted, results)
	for _, id := range entryIDs {
		for i := range s.entries {
			if s.entries[i].ID == id {
				s.entries[i].Processed = true
			}
		}
	}
	return nil
}

func (s *fakeEntryStore) processedIDs() []int64 {
	var ids []int64
	for _, e := range s.entries {
		if e.Processed {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

type fakeProcessor struct {
	err   error
	calls int
}

func (p *fakeProcessor) ProcessBatch(_ context.Context, entries []domain.Entry) ([]domain.AnalysisResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	results := make([]domain.AnalysisResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, domain.AnalysisResult{EntryID: e.ID, Keywords: []string{}})
	}
	return results, nil
}

type fakeNotifier struct {
	digests []string
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

func strPtr(s string) *string {
	return &s
}

func newEnricher(store ports.EntryStore, proc ports.BatchProcessor, notifier ports.Notifier, batchSize int, maxRuntime time.Duration) *Enricher {
	return NewEnricher(EnricherDeps{
		Store:      store,
		Processor:  proc,
		Pacer:      ratelimit.NewPacer(0),
		Notifier:   notifier,
		BatchSize:  batchSize,
		MaxRuntime: maxRuntime,
	})
}

func TestEnricherDrainsQueueInBatches(t *testing.T) {
	t.Parallel()

	store := &fakeEntryStore{entries: []domain.Entry{{ID: 1}, {ID: 2}, {ID: 3}}}
	proc := &fakeProcessor{}

	if err := newEnricher(store, proc, nil, 2, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if proc.calls != 2 {
		t.Fatalf("expected 2 batches, got %d", proc.calls)
	}
	if got := store.processedIDs(); len(got) != 3 {
		t.Fatalf("expected all entries processed, got %v", got)
	}
	if store.persistCalls != 2 {
		t.Fatalf("expected 2 persist calls, got %d", store.persistCalls)
	}
}

func TestEnricherMarksBatchProcessedOnProcessorFailure(t *testing.T) {
	t.Parallel()

	store := &fakeEntryStore{entries: []domain.Entry{{ID: 1}, {ID: 2}}}
	proc := &fakeProcessor{err: errors.New("retries exhausted")}

	if err := newEnricher(store, proc, nil, 10, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if got := store.processedIDs(); len(got) != 2 {
		t.Fatalf("failed batch must still be marked processed, got %v", got)
	}
	if len(store.inserted) != 1 || len(store.inserted[0]) != 0 {
		t.Fatalf("expected one empty persist, got %+v", store.inserted)
	}
}

func TestEnricherPersistFailureLeavesBatchForRetry(t *testing.T) {
	t.Parallel()

	store := &fakeEntryStore{
		entries:     []domain.Entry{{ID: 1}, {ID: 2}},
		persistErrs: []error{errors.New("deadlock detected"), nil},
	}
	proc := &fakeProcessor{}

	if err := newEnricher(store, proc, nil, 10, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// The rolled-back attempt must leave no trace: the end state equals a
	// single successful attempt.
	if store.persistCalls != 2 {
		t.Fatalf("expected rollback then retry, got %d persist calls", store.persistCalls)
	}
	if len(store.inserted) != 1 || len(store.inserted[0]) != 2 {
		t.Fatalf("expected exactly one committed batch, got %+v", store.inserted)
	}
	if got := store.processedIDs(); len(got) != 2 {
		t.Fatalf("expected both entries processed after retry, got %v", got)
	}
}

func TestEnricherRuntimeCeiling(t *testing.T) {
	t.Parallel()

	store := &fakeEntryStore{entries: []domain.Entry{{ID: 1}}}
	proc := &fakeProcessor{}

	if err := newEnricher(store, proc, nil, 10, time.Nanosecond).Run(context.Background()); err != nil {
		t.Fatalf("timeout is not an error: %v", err)
	}

	if store.fetchCalls != 0 {
		t.Fatalf("ceiling must be checked before polling, got %d fetches", store.fetchCalls)
	}
	if len(store.processedIDs()) != 0 {
		t.Fatal("no entry should be processed after immediate timeout")
	}
}

func TestEnricherPublishesRunSummary(t *testing.T) {
	t.Parallel()

	store := &fakeEntryStore{entries: []domain.Entry{{ID: 1}, {ID: 2}}}
	notifier := &fakeNotifier{}

	if err := newEnricher(store, &fakeProcessor{}, notifier, 10, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("expected one summary, got %d", len(notifier.digests))
	}
	if !strings.Contains(notifier.digests[0], "2 of 2") {
		t.Fatalf("summary missing counts: %s", notifier.digests[0])
	}
}

type scriptedClient struct {
	response string
	prompts  []string
}

func (c *scriptedClient) Generate(_ context.Context, prompt string, _ ports.GenerationParams) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.response, nil
}

// Full path through the real processor: two unprocessed entries, one with
// nil title and description, a scripted API response, and assertions on the
// persisted rows and processed flags.
func TestEnricherEndToEndScenario(t *testing.T) {
	t.Parallel()

	promptFile := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(promptFile, []byte("Translate:\n{entries}"), 0o600); err != nil {
		t.Fatalf("write prompt file: %v", err)
	}

	client := &scriptedClient{response: `[
	  {"translated_title":"A*","translated_description":"d1*","keywords":["x"],"sentiment":"neutral","category":"news"},
	  {"translated_title":"B*","translated_description":"","keywords":[],"sentiment":"","category":""}
	]`}

	store := &fakeEntryStore{entries: []domain.Entry{
		{ID: 1, Title: strPtr("A"), Description: strPtr("d1")},
		{ID: 2, Title: nil, Description: nil},
	}}

	processor := analysis.NewProcessor(analysis.ProcessorDeps{
		Client:     client,
		PromptFile: promptFile,
	})

	if err := newEnricher(store, processor, nil, 10, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(store.inserted) != 1 || len(store.inserted[0]) != 2 {
		t.Fatalf("expected two persisted results, got %+v", store.inserted)
	}

	first, second := store.inserted[0][0], store.inserted[0][1]
	if first.EntryID != 1 || first.TranslatedTitle != "A*" || first.Keywords[0] != "x" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if second.EntryID != 2 || second.TranslatedTitle != "B*" {
		t.Fatalf("unexpected second result: %+v", second)
	}

	if got := store.processedIDs(); len(got) != 2 {
		t.Fatalf("both entries must be marked processed, got %v", got)
	}

	if len(client.prompts) != 1 || !strings.Contains(client.prompts[0], "- Description: No description") {
		t.Fatalf("entry 2 must be rendered from the placeholder before the call:\n%v", client.prompts)
	}
}
