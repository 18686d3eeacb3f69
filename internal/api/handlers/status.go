package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmpark/outageboard/internal/core"
)

func (h *Handler) ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regions": core.Regions()})
}

// GetSnapshot serves the latest aggregated snapshot for a region.
// 404 means no scrape cycle has succeeded yet (or every category page
// failed last cycle).
func (h *Handler) GetSnapshot(c *gin.Context) {
	region, ok := core.ParseRegion(c.Param("region"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region"})
		return
	}

	snap, ok := h.cache.Snapshot(region)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot available"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetService serves (severity, report_series) for one service,
// scraping on a cache miss. A name missing even from a fresh snapshot
// returns severity "unknown" with no series, never an error status.
func (h *Handler) GetService(c *gin.Context) {
	region, ok := core.ParseRegion(c.Param("region"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region"})
		return
	}
	name := c.Param("name")

	severity, series, found := h.cache.Lookup(c.Request.Context(), region, name)

	c.JSON(http.StatusOK, gin.H{
		"name":          name,
		"region":        region,
		"severity":      severity,
		"report_series": series,
		"found":         found,
	})
}

// GetAlarms lists the services currently at danger severity for a
// region, optionally filtered by ?category=.
func (h *Handler) GetAlarms(c *gin.Context) {
	region, ok := core.ParseRegion(c.Param("region"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region"})
		return
	}

	category := core.Category(c.Query("category"))
	alarms := h.cache.Alarms(region, category)
	if alarms == nil {
		alarms = []core.OutageRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"region": region,
		"alarms": alarms,
	})
}
