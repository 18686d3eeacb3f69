package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmpark/outageboard/internal/core"
)

// GetRegistry serves every service name ever observed for a region.
func (h *Handler) GetRegistry(c *gin.Context) {
	region, ok := core.ParseRegion(c.Param("region"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region"})
		return
	}

	names := h.registry.Names(region)
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"region": region,
		"names":  names,
	})
}
