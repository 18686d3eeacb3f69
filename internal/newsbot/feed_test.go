package newsbot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Search results</title>
<item>
  <title>Netflix down for thousands of users - TechNews</title>
  <link>https://example.com/netflix-down</link>
  <pubDate>Mon, 03 Feb 2025 04:00:00 GMT</pubDate>
  <source url="https://technews.example.com">TechNews</source>
</item>
<item>
  <title>Streaming wars heat up again - Variety</title>
  <link>https://example.com/streaming-wars</link>
  <pubDate>Mon, 03 Feb 2025 03:00:00 GMT</pubDate>
  <source url="https://variety.example.com">Variety</source>
</item>
<item>
  <title>NETFLIX outage spreads to Europe - Wire</title>
  <link>https://example.com/netflix-europe</link>
  <pubDate>Mon, 03 Feb 2025 02:00:00 GMT</pubDate>
  <source url="https://wire.example.com">Wire</source>
</item>
</channel></rss>`

func TestFeedSearchFiltersAndStripsTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture)
	}))
	defer srv.Close()

	f := NewFeedClient(zap.NewNop())
	// Point the query at the fixture server.
	f.client = srv.Client()
	headlines, err := f.searchURL(context.Background(), srv.URL, "Netflix")
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}

	// "Streaming wars" lacks the keyword and must be filtered out.
	if len(headlines) != 2 {
		t.Fatalf("got %d headlines, want 2: %+v", len(headlines), headlines)
	}

	if headlines[0].Title != "Netflix down for thousands of users" {
		t.Errorf("title = %q, want publisher suffix stripped", headlines[0].Title)
	}
	if headlines[0].Source != "TechNews" {
		t.Errorf("source = %q, want TechNews", headlines[0].Source)
	}

	// Keyword matching is case-insensitive.
	if headlines[1].Title != "NETFLIX outage spreads to Europe" {
		t.Errorf("second headline = %q", headlines[1].Title)
	}

	// Publish times are rendered in GMT+9.
	if got := headlines[0].PublishedAt.Format("2006-01-02 15:04:05"); got != "2025-02-03 13:00:00" {
		t.Errorf("published time = %q, want 13:00 GMT+9", got)
	}
}

func TestFeedSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFeedClient(zap.NewNop())
	f.client = srv.Client()

	if _, err := f.searchURL(context.Background(), srv.URL, "Netflix"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
