package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
)

// Reader fetches one RSS/Atom feed over HTTP and converts its items into
// entries. Descriptions are reduced to plain text before storage.
type Reader struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ ports.FeedReader = (*Reader)(nil)

// NewReader wires an HTTP client; a nil client gets a 10 second timeout.
func NewReader(client *http.Client) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Reader{client: client, parser: gofeed.NewParser()}
}

// Read downloads and parses the source feed. Items without a parseable
// publication date are dropped; everything else becomes an unprocessed entry
// bound to the source.
func (r *Reader) Read(ctx context.Context, source domain.FeedSource) ([]domain.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "rss-pipeline/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]domain.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		published := publishedTime(item)
		if published == nil {
			continue
		}

		entries = append(entries, domain.Entry{
			Title:       optionalText(item.Title),
			Link:        item.Link,
			Published:   published.UTC(),
			Description: optionalText(stripHTML(item.Description)),
			FeedID:      source.ID,
		})
	}

	return entries, nil
}

func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// stripHTML extracts the text content of an HTML fragment, leaving plain
// strings untouched.
func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return doc.Text()
}
