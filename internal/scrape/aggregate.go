package scrape

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jmpark/outageboard/internal/config"
	"github.com/jmpark/outageboard/internal/core"
	"github.com/jmpark/outageboard/internal/metrics"
)

// ErrNoSnapshot means every category page for a region failed and
// there is nothing to aggregate. Dependent lookups degrade to
// "no data" rather than raising.
var ErrNoSnapshot = errors.New("no snapshot available")

// Aggregator walks the fixed category page list for a region, fetches
// and extracts each page, tags the rows, and merges them into one
// deduplicated, severity-sorted snapshot.
type Aggregator struct {
	fetcher   Fetcher
	preflight *Preflight
	limiter   *rate.Limiter
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewAggregator(fetcher Fetcher, preflight *Preflight, pacing time.Duration, collector *metrics.Collector, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher:   fetcher,
		preflight: preflight,
		// Fixed pacing between consecutive category fetches. Not a
		// backoff: the delay never adapts to rate-limit signals.
		limiter: rate.NewLimiter(rate.Every(pacing), 1),
		metrics: collector,
		logger:  logger,
	}
}

// Scrape produces a fresh snapshot for region. Partial results are
// acceptable: as long as one category page loads, the snapshot is
// built from whatever succeeded.
func (a *Aggregator) Scrape(ctx context.Context, region core.Region) (*core.Snapshot, error) {
	pages := config.CategoryPages(region)
	if len(pages) == 0 {
		return nil, ErrNoSnapshot
	}

	start := time.Now()
	var merged []core.OutageRecord
	seen := make(map[string]struct{})
	succeeded := 0

	for _, page := range pages {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		if a.preflight != nil {
			if err := a.preflight.ResolveURL(page.URL); err != nil {
				a.logger.Warn("Preflight DNS lookup failed",
					zap.String("url", page.URL),
					zap.String("region", string(region)),
					zap.Error(err),
				)
				// The resolver we query is not necessarily the one the
				// browser uses, so the page is still attempted.
			}
		}

		html, err := a.fetcher.FetchRendered(ctx, page.URL)
		if err != nil {
			a.metrics.RecordPage(region, page.Category, false)
			a.logger.Warn("Category page fetch failed, skipping",
				zap.String("url", page.URL),
				zap.String("category", string(page.Category)),
				zap.Error(err),
			)
			continue
		}

		rows, err := ExtractRows(html, a.logger)
		if err != nil {
			a.metrics.RecordPage(region, page.Category, false)
			a.logger.Warn("Page extraction failed, skipping",
				zap.String("url", page.URL),
				zap.Error(err),
			)
			continue
		}

		succeeded++
		a.metrics.RecordPage(region, page.Category, true)
		a.metrics.AddRows(region, page.Category, len(rows))

		// First occurrence across category pages wins; later
		// duplicates are dropped, whatever their severity.
		for _, row := range rows {
			key := strings.ToLower(row.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			row.Region = region
			row.Category = page.Category
			merged = append(merged, row)
		}
	}

	if succeeded == 0 {
		return nil, ErrNoSnapshot
	}

	snap := &core.Snapshot{
		Region:  region,
		CycleID: uuid.New().String(),
		TakenAt: time.Now(),
		Records: merged,
	}
	snap.SortBySeverity()

	a.metrics.ObserveScrape(region, time.Since(start))
	a.logger.Info("Region scrape complete",
		zap.String("region", string(region)),
		zap.String("cycle_id", snap.CycleID),
		zap.Int("pages_ok", succeeded),
		zap.Int("records", len(snap.Records)),
	)
	return snap, nil
}
