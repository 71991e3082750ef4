package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
	"github.com/mahee-dev/automated-news-scripts/internal/retry"
)

const (
	defaultTemperature    = 0.7
	defaultTokensPerEntry = 2000
)

// Processor composes a prompt from a batch of entries, drives the generative
// API with retry, and validates the structured response.
type Processor struct {
	client         ports.GenerativeClient
	promptFile     string
	retryPolicy    retry.Policy
	temperature    float64
	tokensPerEntry int
	logger         *slog.Logger
}

var _ ports.BatchProcessor = (*Processor)(nil)

// ProcessorDeps wires the processor's collaborators.
type ProcessorDeps struct {
	Client     ports.GenerativeClient
	PromptFile string
	Logger     *slog.Logger
}

// NewProcessor builds a batch processor with the fixed generation parameters.
func NewProcessor(deps ProcessorDeps) *Processor {
	return &Processor{
		client:         deps.Client,
		promptFile:     deps.PromptFile,
		retryPolicy:    retry.DefaultPolicy(),
		temperature:    defaultTemperature,
		tokensPerEntry: defaultTokensPerEntry,
		logger:         deps.Logger,
	}
}

// ProcessBatch runs one batch through composition, generation, and
// validation. Prompt and response problems degrade to an empty result with a
// logged reason; only exhausted retries surface as an error so the caller
// knows the batch was never answered.
func (p *Processor) ProcessBatch(ctx context.Context, entries []domain.Entry) ([]domain.AnalysisResult, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	block, index := renderBatch(entries)
	if strings.TrimSpace(block) == "" {
		p.warn("batch block is empty after rendering", "batch_size", len(entries))
		return nil, nil
	}

	prompt, err := composePrompt(p.promptFile, block)
	if err != nil {
		p.error("cannot compose prompt", "error", err)
		return nil, nil
	}

	raw, err := p.generate(ctx, prompt, len(entries))
	if err != nil {
		return nil, fmt.Errorf("generate batch: %w", err)
	}

	outcomes, err := validateResponse(stripCodeFence(raw), index, len(entries))
	if err != nil {
		p.error("invalid response format", "error", err)
		return nil, nil
	}

	if len(outcomes) < len(entries) {
		p.warn("response shorter than batch", "expected", len(entries), "got", len(outcomes))
	}

	results := make([]domain.AnalysisResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		if !outcome.OK() {
			p.warn("skipping response item",
				"entry_id", outcome.EntryID,
				"reason", outcome.Skipped,
				"field", outcome.Field)
			continue
		}
		results = append(results, outcome.Result)
	}

	return results, nil
}

func (p *Processor) generate(ctx context.Context, prompt string, batchSize int) (string, error) {
	params := ports.GenerationParams{
		Temperature:     p.temperature,
		MaxOutputTokens: p.tokensPerEntry * batchSize,
	}

	var raw string
	err := retry.Do(ctx, p.retryPolicy, p.logger, func() error {
		var callErr error
		raw, callErr = p.client.Generate(ctx, prompt, params)
		return callErr
	})
	if err != nil {
		return "", err
	}

	return raw, nil
}

func (p *Processor) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Processor) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
