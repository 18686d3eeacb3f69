package scrape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

const (
	captionSelector   = ".caption"
	sparklineSelector = ".sparkline"
)

// ExtractRows parses every visible outage entry out of a rendered
// page. Region and category are attached later by the aggregator.
// One malformed entry never aborts the rest of the page: it is logged
// and skipped. Output keeps DOM order.
func ExtractRows(html string, logger *zap.Logger) ([]core.OutageRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var records []core.OutageRecord

	doc.Find(captionSelector).Each(func(i int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find("h5").First().Text())
		if name == "" {
			logger.Warn("Skipping outage entry without a service name", zap.Int("index", i))
			return
		}

		rec := core.OutageRecord{
			Name:     name,
			Severity: core.SeveritySuccess,
		}

		spark := sel.Find(sparklineSelector).First()
		if spark.Length() == 0 {
			// No sparkline at all: keep the entry, just without chart
			// data or a derivable severity signal.
			logger.Debug("Outage entry has no sparkline", zap.String("name", name))
			records = append(records, rec)
			return
		}

		if raw, ok := spark.Attr("data-values"); ok {
			series, err := ParseSeries(raw)
			if err != nil {
				logger.Warn("Failed to parse sparkline values",
					zap.String("name", name),
					zap.String("raw", raw),
					zap.Error(err),
				)
			} else {
				rec.ReportSeries = series
			}
		}

		rec.Severity = core.SeverityFromClasses(strings.Fields(spark.AttrOr("class", "")))
		records = append(records, rec)
	})

	return records, nil
}

// ParseSeries decodes the bracketed list the sparkline element carries
// in its data-values attribute, e.g. "[0, 3, 17]". Samples are report
// counts and must be non-negative.
func ParseSeries(raw string) ([]int, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, ",")
	series := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid sample %q: %w", p, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative sample %d", n)
		}
		series = append(series, n)
	}
	return series, nil
}
