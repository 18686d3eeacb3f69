package cache

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

// Scraper is satisfied by scrape.Aggregator; the cache only needs the
// read-through refresh path.
type Scraper interface {
	Scrape(ctx context.Context, region core.Region) (*core.Snapshot, error)
}

// Entry is one cached (severity, report series) pair.
type Entry struct {
	Severity     core.Severity `json:"severity"`
	ReportSeries []int         `json:"report_series,omitempty"`
}

// StatusCache is the read-through cache keyed by (region, service
// name). Entries never expire individually; a whole region is either
// replaced atomically after a scrape or invalidated in bulk by the
// polling timer. Old values stay readable until the swap.
type StatusCache struct {
	mu        sync.RWMutex
	scraper   Scraper
	snapshots map[core.Region]*core.Snapshot
	entries   map[core.Region]map[string]Entry
	logger    *zap.Logger
}

func NewStatusCache(scraper Scraper, logger *zap.Logger) *StatusCache {
	return &StatusCache{
		scraper:   scraper,
		snapshots: make(map[core.Region]*core.Snapshot),
		entries:   make(map[core.Region]map[string]Entry),
		logger:    logger,
	}
}

// Lookup returns the cached status for (region, name), scraping the
// region first if nothing is cached. A name absent even from the
// fresh snapshot yields (unknown, nil, false) without an error.
func (c *StatusCache) Lookup(ctx context.Context, region core.Region, name string) (core.Severity, []int, bool) {
	key := strings.ToLower(name)

	c.mu.RLock()
	if e, ok := c.entries[region][key]; ok {
		c.mu.RUnlock()
		return e.Severity, e.ReportSeries, true
	}
	c.mu.RUnlock()

	snap, err := c.scraper.Scrape(ctx, region)
	if err != nil {
		c.logger.Warn("Cache refresh failed",
			zap.String("region", string(region)),
			zap.String("name", name),
			zap.Error(err),
		)
		return core.SeverityUnknown, nil, false
	}
	c.Replace(snap)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[region][key]; ok {
		return e.Severity, e.ReportSeries, true
	}
	return core.SeverityUnknown, nil, false
}

// Replace swaps in a whole new snapshot for its region. The entry map
// is rebuilt off to the side and installed in one assignment, so
// readers never see a partially updated region.
func (c *StatusCache) Replace(snap *core.Snapshot) {
	m := make(map[string]Entry, len(snap.Records))
	for _, r := range snap.Records {
		key := strings.ToLower(r.Name)
		if _, dup := m[key]; dup {
			continue
		}
		m[key] = Entry{Severity: r.Severity, ReportSeries: r.ReportSeries}
	}

	c.mu.Lock()
	c.snapshots[snap.Region] = snap
	c.entries[snap.Region] = m
	c.mu.Unlock()
}

// InvalidateRegion drops the whole cached region. Called by the
// polling loop when the refresh interval elapses; entries are never
// evicted one at a time.
func (c *StatusCache) InvalidateRegion(region core.Region) {
	c.mu.Lock()
	delete(c.snapshots, region)
	delete(c.entries, region)
	c.mu.Unlock()
}

// Snapshot returns the last installed snapshot for region, if any.
func (c *StatusCache) Snapshot(region core.Region) (*core.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[region]
	return snap, ok
}

// Alarms lists the cached danger-severity services for region,
// optionally category-filtered.
func (c *StatusCache) Alarms(region core.Region, category core.Category) []core.OutageRecord {
	c.mu.RLock()
	snap, ok := c.snapshots[region]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return snap.Alarms(category)
}
