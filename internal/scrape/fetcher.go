package scrape

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrFetchFailed is the sentinel for a page that could not be loaded
// even after the browser session was recycled. Callers skip the page
// and carry on.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher loads a URL and returns the rendered document. The narrow
// interface keeps extraction and merging testable on fixture HTML
// without a live browser.
type Fetcher interface {
	FetchRendered(ctx context.Context, url string) (string, error)
}

// BrowserFetcher drives a single long-lived headless Chrome session.
// Only one logical "current page" exists at a time, so calls are
// serialized; the session is recreated only after a navigation
// failure.
type BrowserFetcher struct {
	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	sessionCtx  context.Context
	sessionStop context.CancelFunc
	waitTimeout time.Duration
	navTimeout  time.Duration
	logger      *zap.Logger
}

func NewBrowserFetcher(waitTimeout, navTimeout time.Duration, logger *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	f := &BrowserFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		waitTimeout: waitTimeout,
		navTimeout:  navTimeout,
		logger:      logger,
	}
	f.newSession()
	return f
}

func (f *BrowserFetcher) newSession() {
	if f.sessionStop != nil {
		f.sessionStop()
	}
	f.sessionCtx, f.sessionStop = chromedp.NewContext(f.allocCtx)
	f.logger.Info("Browser session created")
}

// FetchRendered navigates to url and blocks until the outage list has
// rendered or the wait times out. A navigation error recycles the
// session and retries exactly once; the second failure returns
// ErrFetchFailed.
func (f *BrowserFetcher) FetchRendered(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	html, err := f.load(ctx, url)
	if err == nil {
		return html, nil
	}

	f.logger.Warn("Navigation failed, recycling browser session",
		zap.String("url", url),
		zap.Error(err),
	)
	f.newSession()

	html, err = f.load(ctx, url)
	if err != nil {
		f.logger.Error("Navigation failed after session recycle",
			zap.String("url", url),
			zap.Error(err),
		)
		return "", ErrFetchFailed
	}
	return html, nil
}

func (f *BrowserFetcher) load(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	navCtx, cancel := context.WithTimeout(f.sessionCtx, f.navTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return "", err
	}

	// Best effort: a wait timeout is not fatal, whatever partial DOM
	// is present gets extracted.
	waitCtx, waitCancel := context.WithTimeout(f.sessionCtx, f.waitTimeout)
	defer waitCancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(captionSelector, chromedp.ByQuery)); err != nil {
		f.logger.Warn("Timed out waiting for outage list, proceeding with partial DOM",
			zap.String("url", url),
			zap.Error(err),
		)
	}

	var html string
	htmlCtx, htmlCancel := context.WithTimeout(f.sessionCtx, f.navTimeout)
	defer htmlCancel()

	if err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close tears the browser down. Only called on process exit.
func (f *BrowserFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionStop != nil {
		f.sessionStop()
	}
	f.allocCancel()
}
