package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mahee-dev/automated-news-scripts/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <item>
      <title>Markets rally</title>
      <link>https://example.org/markets</link>
      <pubDate>Mon, 10 Mar 2025 08:00:00 GMT</pubDate>
      <description>&lt;p&gt;Stocks &lt;b&gt;rose&lt;/b&gt; sharply.&lt;/p&gt;</description>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://example.org/undated</link>
      <description>no date here</description>
    </item>
  </channel>
</rss>`

func TestReaderParsesFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	reader := NewReader(server.Client())
	entries, err := reader.Read(context.Background(), domain.FeedSource{ID: 3, URL: server.URL})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (undated item dropped), got %d", len(entries))
	}

	entry := entries[0]
	if entry.Title == nil || *entry.Title != "Markets rally" {
		t.Fatalf("unexpected title: %+v", entry.Title)
	}
	if entry.Link != "https://example.org/markets" {
		t.Fatalf("unexpected link: %s", entry.Link)
	}
	if entry.FeedID != 3 {
		t.Fatalf("entry not bound to source: %d", entry.FeedID)
	}
	if entry.Description == nil || *entry.Description != "Stocks rose sharply." {
		t.Fatalf("HTML not stripped from description: %+v", entry.Description)
	}
	if entry.Published.IsZero() {
		t.Fatal("published time not parsed")
	}
}

func TestReaderHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	reader := NewReader(server.Client())
	if _, err := reader.Read(context.Background(), domain.FeedSource{URL: server.URL}); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>hello <b>world</b></p>", "hello world"},
		{"<div><a href=\"x\">link</a> tail</div>", "link tail"},
	}

	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Fatalf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
