package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/domain/textlayer"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// LayerHandlers contains the text layer HTTP handlers
type LayerHandlers struct {
	layerService *services.LayerService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewLayerHandlers creates layer handlers with injected dependencies
func NewLayerHandlers(layerService *services.LayerService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LayerHandlers {
	return &LayerHandlers{
		layerService: layerService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetLayers handles GET /api/v1/sessions/:id/layers
func (h *LayerHandlers) GetLayers(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("list_layers_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	layers, err := h.layerService.List(sessionID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layers": layers, "count": len(layers)})
}

// PostLayer handles POST /api/v1/sessions/:id/layers
func (h *LayerHandlers) PostLayer(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("add_layer_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	layer, err := h.layerService.Add(sessionID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusCreated, layer)
}

// PatchLayer handles PATCH /api/v1/sessions/:id/layers/:layerId
func (h *LayerHandlers) PatchLayer(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("update_layer_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	layerID, err := layerParam(c)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	var patch textlayer.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, h.logger, marker, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	layer, err := h.layerService.Update(sessionID, layerID, patch)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, layer)
}

// PostDuplicateLayer handles POST /api/v1/sessions/:id/layers/:layerId/duplicate
func (h *LayerHandlers) PostDuplicateLayer(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("duplicate_layer_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	layerID, err := layerParam(c)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	layer, err := h.layerService.Duplicate(sessionID, layerID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusCreated, layer)
}

// DeleteLayer handles DELETE /api/v1/sessions/:id/layers/:layerId
func (h *LayerHandlers) DeleteLayer(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("delete_layer_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	layerID, err := layerParam(c)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	if err := h.layerService.Remove(sessionID, layerID); err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLayerPreviews handles GET /api/v1/sessions/:id/layers/preview
func (h *LayerHandlers) GetLayerPreviews(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("layer_preview_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	previews, err := h.layerService.Previews(sessionID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"previews": previews})
}

func layerParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("layerId"))
	if err != nil {
		return 0, fmt.Errorf("%w: layer id %q", errBadRequest, c.Param("layerId"))
	}
	return id, nil
}
