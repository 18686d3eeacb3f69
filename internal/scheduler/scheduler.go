package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/alerts"
	"github.com/jmpark/outageboard/internal/cache"
	"github.com/jmpark/outageboard/internal/core"
	"github.com/jmpark/outageboard/internal/metrics"
	"github.com/jmpark/outageboard/internal/registry"
	"github.com/jmpark/outageboard/internal/scrape"
)

// HistoryStore is the optional snapshot persistence hook.
type HistoryStore interface {
	SaveSnapshot(snap *core.Snapshot) error
}

// EventPublisher is the optional alarm fan-out hook.
type EventPublisher interface {
	PublishEvents(region core.Region, events []alerts.Event)
}

// Scheduler drives the polling loop: every interval it scrapes each
// configured region strictly in sequence (the browser session is a
// single shared resource, so region scrapes must not interleave),
// refreshes the status cache, merges the company registry, and fans
// out history rows and alarm events.
type Scheduler struct {
	aggregator *scrape.Aggregator
	cache      *cache.StatusCache
	registry   *registry.Registry
	tracker    *alerts.Tracker
	metrics    *metrics.Collector
	history    HistoryStore
	publisher  EventPublisher
	regions    []core.Region
	interval   time.Duration
	logger     *zap.Logger
}

func NewScheduler(
	aggregator *scrape.Aggregator,
	statusCache *cache.StatusCache,
	reg *registry.Registry,
	tracker *alerts.Tracker,
	collector *metrics.Collector,
	history HistoryStore,
	publisher EventPublisher,
	regions []core.Region,
	interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		aggregator: aggregator,
		cache:      statusCache,
		registry:   reg,
		tracker:    tracker,
		metrics:    collector,
		history:    history,
		publisher:  publisher,
		regions:    regions,
		interval:   interval,
		logger:     logger,
	}
}

// Start runs one cycle immediately, then one per interval until ctx
// is cancelled. A running cycle is never cancelled mid-region; ctx is
// only consulted between regions.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("regions", len(s.regions)),
	)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping scheduler")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for _, region := range s.regions {
		if ctx.Err() != nil {
			return
		}
		s.refreshRegion(ctx, region)
	}
}

func (s *Scheduler) refreshRegion(ctx context.Context, region core.Region) {
	snap, err := s.aggregator.Scrape(ctx, region)
	if err != nil {
		if errors.Is(err, scrape.ErrNoSnapshot) {
			// Every category page failed: drop the stale data so
			// lookups report "no data" instead of an old status.
			s.cache.InvalidateRegion(region)
			s.logger.Warn("No snapshot for region, cache invalidated",
				zap.String("region", string(region)),
			)
			return
		}
		s.logger.Error("Region scrape aborted",
			zap.String("region", string(region)),
			zap.Error(err),
		)
		return
	}

	s.cache.Replace(snap)
	s.registry.MergeAndPersist(region, snap.Names())
	s.metrics.RecordSnapshot(snap)

	if s.history != nil {
		if err := s.history.SaveSnapshot(snap); err != nil {
			s.logger.Warn("Failed to persist snapshot history",
				zap.String("region", string(region)),
				zap.Error(err),
			)
		}
	}

	events := s.tracker.Observe(snap)
	if s.publisher != nil && len(events) > 0 {
		s.publisher.PublishEvents(region, events)
	}
}
