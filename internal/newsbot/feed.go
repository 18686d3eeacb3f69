package newsbot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Headline is one news search hit.
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// Display times are pinned to GMT+9 regardless of where the process
// runs.
var displayZone = time.FixedZone("GMT+9", 9*60*60)

// FeedClient queries the Google News RSS search feed.
type FeedClient struct {
	client *http.Client
	parser *gofeed.Parser
	logger *zap.Logger
}

func NewFeedClient(logger *zap.Logger) *FeedClient {
	return &FeedClient{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Search runs a keyword query over the last windowHours hours. The
// extra keyword (e.g. "outage") widens the query; results are then
// filtered client-side to titles that actually contain the primary
// keyword, case-insensitively.
func (f *FeedClient) Search(ctx context.Context, keyword, extra string, windowHours int) ([]Headline, error) {
	if windowHours <= 0 {
		windowHours = 1
	}

	query := keyword
	if extra != "" {
		query += " " + extra
	}

	feedURL := fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s+when:%dh&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(query), windowHours,
	)

	headlines, err := f.searchURL(ctx, feedURL, keyword)
	if err != nil {
		return nil, err
	}

	f.logger.Info("News search complete",
		zap.String("keyword", keyword),
		zap.Int("window_hours", windowHours),
		zap.Int("hits", len(headlines)),
	)
	return headlines, nil
}

// searchURL fetches and filters one feed URL. Split out so tests can
// aim it at a fixture server.
func (f *FeedClient) searchURL(ctx context.Context, feedURL, keyword string) ([]Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed returned %s", resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	folded := strings.ToLower(keyword)
	var headlines []Headline

	for _, item := range feed.Items {
		title := item.Title
		var source string
		// Google News appends " - Publisher" to every title.
		if idx := strings.LastIndex(title, " - "); idx > 0 {
			source = strings.TrimSpace(title[idx+3:])
			title = strings.TrimSpace(title[:idx])
		}

		if !strings.Contains(strings.ToLower(title), folded) {
			continue
		}

		h := Headline{
			Title:  title,
			Source: source,
			Link:   item.Link,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed.In(displayZone)
		}

		headlines = append(headlines, h)
	}

	return headlines, nil
}
