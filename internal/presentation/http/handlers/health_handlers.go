package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/caching/sessions"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// HealthHandlers reports liveness and request statistics.
type HealthHandlers struct {
	store       *sessions.Store
	perfTracker *performance.Tracker
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(store *sessions.Store, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{store: store, perfTracker: perfTracker}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.store.Len(),
		"uptime":   h.perfTracker.Uptime().String(),
	})
}

// GetStats handles GET /api/v1/health/stats
func (h *HealthHandlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operations": h.perfTracker.Snapshot(),
	})
}
