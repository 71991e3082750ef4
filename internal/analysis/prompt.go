package analysis

import (
	"fmt"
	"os"
	"strings"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
)

const (
	entriesPlaceholder = "{entries}"
	untitledText       = "Untitled"
	noDescriptionText  = "No description"
)

// renderBatch serializes entries into the fixed textual block substituted
// into the prompt template. The returned map resolves 1-based positions in
// the block back to store identifiers.
func renderBatch(entries []domain.Entry) (string, map[int]int64) {
	var block strings.Builder
	index := make(map[int]int64, len(entries))

	for i, entry := range entries {
		title := untitledText
		if entry.Title != nil {
			title = *entry.Title
		}
		description := noDescriptionText
		if entry.Description != nil {
			description = *entry.Description
		}

		fmt.Fprintf(&block, "Entry %d:\n- Title: %s\n- Description: %s\n\n", i+1, title, description)
		index[i+1] = entry.ID
	}

	return block.String(), index
}

// composePrompt loads the template file and substitutes the rendered batch
// block at the {entries} placeholder.
func composePrompt(promptFile, block string) (string, error) {
	raw, err := os.ReadFile(promptFile)
	if err != nil {
		return "", fmt.Errorf("read prompt file %s: %w", promptFile, err)
	}

	prompt := strings.ReplaceAll(string(raw), entriesPlaceholder, block)
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("composed prompt is empty")
	}

	return prompt, nil
}

// stripCodeFence removes an optional Markdown code-fence wrapper (leading
// fence with language tag, trailing fence) around the raw response text.
func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```json")
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}

	cleaned = strings.TrimSpace(cleaned)
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}
