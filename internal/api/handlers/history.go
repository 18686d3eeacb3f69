package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

// GetServiceHistory serves past observations of one service from the
// history store. 404 when history persistence is not configured.
func (h *Handler) GetServiceHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history persistence not configured"})
		return
	}

	region, ok := core.ParseRegion(c.Param("region"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region"})
		return
	}
	name := c.Param("name")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	points, err := h.history.RecentHistory(region, name, limit)
	if err != nil {
		h.logger.Error("Failed to query history",
			zap.String("region", string(region)),
			zap.String("name", name),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"region":  region,
		"name":    name,
		"history": points,
	})
}
