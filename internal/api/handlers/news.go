package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type newsItem struct {
	Title           string `json:"title"`
	TranslatedTitle string `json:"translated_title,omitempty"`
	Source          string `json:"source"`
	Link            string `json:"link"`
	PublishedAt     string `json:"published_at"`
}

// SearchNews runs the on-demand news tracker for a service:
// feed search, keyword filtering, and per-headline translation.
// Translation failures degrade to untranslated items.
func (h *Handler) SearchNews(c *gin.Context) {
	service := c.Query("service")
	if service == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service query parameter required"})
		return
	}

	extra := c.DefaultQuery("keyword", "outage")
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "1"))
	if err != nil || hours <= 0 {
		hours = 1
	}

	headlines, err := h.feed.Search(c.Request.Context(), service, extra, hours)
	if err != nil {
		h.metrics.RecordNewsSearch(false)
		h.logger.Warn("News search failed", zap.String("service", service), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "news search failed"})
		return
	}
	h.metrics.RecordNewsSearch(true)

	items := make([]newsItem, 0, len(headlines))
	for _, hl := range headlines {
		_, hit := h.translator.Cached(hl.Title)
		h.metrics.RecordTranslateCache(hit)
		items = append(items, newsItem{
			Title:           hl.Title,
			TranslatedTitle: h.translator.Translate(c.Request.Context(), hl.Title),
			Source:          hl.Source,
			Link:            hl.Link,
			PublishedAt:     hl.PublishedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"service": service,
		"hours":   hours,
		"items":   items,
	})
}

// GeocodeLocation resolves a free-text outage-map location. Not-found
// is a 200 with found=false, mirroring how the pipeline treats every
// external miss as "no data" rather than an error.
func (h *Handler) GeocodeLocation(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter required"})
		return
	}

	coord, found := h.geocoder.Geocode(c.Request.Context(), location)

	c.JSON(http.StatusOK, gin.H{
		"location": location,
		"found":    found,
		"lat":      coord.Lat,
		"lon":      coord.Lon,
	})
}
