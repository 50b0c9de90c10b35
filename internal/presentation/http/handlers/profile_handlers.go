package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ProfileHandlers exposes quota profiles
type ProfileHandlers struct {
	quotaService *services.QuotaService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewProfileHandlers creates profile handlers with injected dependencies
func NewProfileHandlers(quotaService *services.QuotaService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ProfileHandlers {
	return &ProfileHandlers{
		quotaService: quotaService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetProfile handles GET /api/v1/profiles/:id
func (h *ProfileHandlers) GetProfile(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_profile_request", "")
	defer finish(h.perfTracker, h.logger, marker)

	view, err := h.quotaService.View(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
