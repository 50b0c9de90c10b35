package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/cutout-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SessionHandlers contains the session lifecycle HTTP handlers
type SessionHandlers struct {
	sessionService *services.SessionService
	hub            *messaging.Hub
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(sessionService *services.SessionService, hub *messaging.Hub, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		hub:            hub,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostSession handles POST /api/v1/sessions
func (h *SessionHandlers) PostSession(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	marker := h.perfTracker.StartOperation("create_session_request", "")
	defer finish(h.perfTracker, h.logger, marker)

	sess, err := h.sessionService.Create(profileID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("get_session_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	snap, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *SessionHandlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation("delete_session_request", sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	if err := h.sessionService.Delete(sessionID); err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	h.hub.CloseSession(sessionID)
	c.Status(http.StatusNoContent)
}
