package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// GenerateRequest is the body of a background generation request.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// ImageHandlers contains photo, background and asset HTTP handlers
type ImageHandlers struct {
	sessionService    *services.SessionService
	cutoutService     *services.CutoutService
	backgroundService *services.BackgroundService
	maxUpload         int64
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewImageHandlers creates image handlers with injected dependencies
func NewImageHandlers(sessionService *services.SessionService, cutoutService *services.CutoutService,
	backgroundService *services.BackgroundService, maxUpload int64,
	logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ImageHandlers {
	return &ImageHandlers{
		sessionService:    sessionService,
		cutoutService:     cutoutService,
		backgroundService: backgroundService,
		maxUpload:         maxUpload,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// PostImage handles POST /api/v1/sessions/:id/image
func (h *ImageHandlers) PostImage(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("upload_image_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	if err := h.cutoutService.BeginRemoval(sessionID, up); err != nil {
		respondError(c, h.logger, marker, err)
		return
	}

	snap, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

// PostGenerateBackground handles POST /api/v1/sessions/:id/background/generate
func (h *ImageHandlers) PostGenerateBackground(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("generate_background_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, marker, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	started, err := h.backgroundService.BeginGeneration(sessionID, req.Prompt)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	if !started {
		c.JSON(http.StatusOK, gin.H{"started": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"started": true})
}

// PostBackground handles POST /api/v1/sessions/:id/background
func (h *ImageHandlers) PostBackground(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("upload_background_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	size, err := h.backgroundService.SetBackground(sessionID, up)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"background": size})
}

// GetAsset handles GET /api/v1/sessions/:id/assets/:kind
func (h *ImageHandlers) GetAsset(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("get_asset_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	width := 0
	if w := c.Query("width"); w != "" {
		width, err = strconv.Atoi(w)
		if err != nil {
			respondError(c, h.logger, marker, fmt.Errorf("%w: %q", media.ErrUnsupportedWidth, w))
			return
		}
	}

	data, contentType, err := h.sessionService.Asset(sessionID, kind, width)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
