package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmpark/outageboard/internal/config"
	"github.com/jmpark/outageboard/internal/core"
)

type Collector struct {
	config   *config.RemoteWriteConfig
	gatherer prometheus.Gatherer

	scrapeDuration      *prometheus.HistogramVec
	pagesFetched        *prometheus.CounterVec
	rowsExtracted       *prometheus.CounterVec
	servicesBySeverity  *prometheus.GaugeVec
	lastScrapeTimestamp *prometheus.GaugeVec
	alarmsActive        *prometheus.GaugeVec
	newsSearchesTotal   *prometheus.CounterVec
	translateCacheHits  *prometheus.CounterVec
}

func NewCollector(cfg config.RemoteWriteConfig, reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		config:   &cfg,
		gatherer: reg,

		scrapeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outage_scrape_duration_seconds",
				Help:    "Duration of full region scrape cycles in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"region"},
		),

		pagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outage_category_pages_total",
				Help: "Category pages fetched, by result",
			},
			[]string{"region", "category", "result"},
		),

		rowsExtracted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outage_rows_extracted_total",
				Help: "Outage rows extracted from category pages",
			},
			[]string{"region", "category"},
		),

		servicesBySeverity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "outage_services_by_severity",
				Help: "Services in the latest snapshot, by severity",
			},
			[]string{"region", "severity"},
		),

		lastScrapeTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "outage_last_scrape_timestamp_seconds",
				Help: "Unix timestamp of the last successful region scrape",
			},
			[]string{"region"},
		),

		alarmsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "outage_alarms_active",
				Help: "Services currently at danger severity",
			},
			[]string{"region"},
		),

		newsSearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outage_news_searches_total",
				Help: "News feed searches performed, by result",
			},
			[]string{"result"},
		),

		translateCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outage_translate_cache_total",
				Help: "Translation cache lookups, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (c *Collector) ObserveScrape(region core.Region, d time.Duration) {
	c.scrapeDuration.WithLabelValues(string(region)).Observe(d.Seconds())
}

func (c *Collector) RecordPage(region core.Region, category core.Category, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.pagesFetched.WithLabelValues(string(region), string(category), result).Inc()
}

func (c *Collector) AddRows(region core.Region, category core.Category, n int) {
	c.rowsExtracted.WithLabelValues(string(region), string(category)).Add(float64(n))
}

// RecordSnapshot refreshes the per-severity gauges from a freshly
// aggregated snapshot.
func (c *Collector) RecordSnapshot(snap *core.Snapshot) {
	counts := map[core.Severity]int{
		core.SeverityDanger:  0,
		core.SeverityWarning: 0,
		core.SeveritySuccess: 0,
		core.SeverityUnknown: 0,
	}
	for _, r := range snap.Records {
		counts[r.Severity]++
	}
	for sev, n := range counts {
		c.servicesBySeverity.WithLabelValues(string(snap.Region), string(sev)).Set(float64(n))
	}
	c.alarmsActive.WithLabelValues(string(snap.Region)).Set(float64(counts[core.SeverityDanger]))
	c.lastScrapeTimestamp.WithLabelValues(string(snap.Region)).Set(float64(snap.TakenAt.Unix()))
}

func (c *Collector) RecordNewsSearch(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.newsSearchesTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTranslateCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	c.translateCacheHits.WithLabelValues(outcome).Inc()
}
