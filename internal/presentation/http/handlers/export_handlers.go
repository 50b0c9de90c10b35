package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/domain/compositing"
	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// PlacementExportRequest carries the on-screen container size the overlay
// was positioned in.
type PlacementExportRequest struct {
	Container geometry.Container `json:"container"`
}

// ExportHandlers contains the PNG download handlers
type ExportHandlers struct {
	exportService *services.ExportService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewExportHandlers creates export handlers with injected dependencies
func NewExportHandlers(exportService *services.ExportService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ExportHandlers {
	return &ExportHandlers{
		exportService: exportService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// GetCutout handles GET /api/v1/sessions/:id/export/cutout
func (h *ExportHandlers) GetCutout(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("export_cutout_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	out, err := h.exportService.Cutout(sessionID)
	h.send(c, marker, out, err)
}

// PostPlacement handles POST /api/v1/sessions/:id/export/placement
func (h *ExportHandlers) PostPlacement(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("export_placement_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	var req PlacementExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, marker, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	out, err := h.exportService.Placement(sessionID, req.Container)
	h.send(c, marker, out, err)
}

// PostTextBehind handles POST /api/v1/sessions/:id/export/text-behind
func (h *ExportHandlers) PostTextBehind(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("export_text_behind_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	out, err := h.exportService.TextBehind(sessionID)
	h.send(c, marker, out, err)
}

// send writes the PNG as a download. Missing inputs answer 204 with no body.
func (h *ExportHandlers) send(c *gin.Context, marker *performance.Marker, out *services.Export, err error) {
	if errors.Is(err, compositing.ErrNotReady) {
		marker.AddMetadata("skipped", true)
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	marker.AddMetadata("bytes", len(out.Data))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, "image/png", out.Data)
}
