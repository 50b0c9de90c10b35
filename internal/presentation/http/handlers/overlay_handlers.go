package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/domain/placement"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/cutout-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// OverlayMessage is what the overlay stream sends to clients.
type OverlayMessage struct {
	Type    string           `json:"type"` // "overlay" or "error"
	Overlay *placement.State `json:"overlay,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// OverlayHandlers contains the overlay gesture HTTP and websocket handlers
type OverlayHandlers struct {
	placementService *services.PlacementService
	hub              *messaging.Hub
	upgrader         websocket.Upgrader
	pingInterval     time.Duration
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewOverlayHandlers creates overlay handlers with injected dependencies.
// Websocket handshakes are accepted from allowedOrigins only.
func NewOverlayHandlers(placementService *services.PlacementService, hub *messaging.Hub, allowedOrigins []string,
	pingInterval time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *OverlayHandlers {
	return &OverlayHandlers{
		placementService: placementService,
		hub:              hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
		pingInterval: pingInterval,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// PostPointer handles POST /api/v1/sessions/:id/overlay/pointer
func (h *OverlayHandlers) PostPointer(c *gin.Context) {
	var ev services.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		marker := h.perfTracker.StartOperation("overlay_pointer_request", c.Param("id"))
		respondError(c, h.logger, marker, fmt.Errorf("%w: %v", errBadRequest, err))
		finish(h.perfTracker, h.logger, marker)
		return
	}
	h.apply(c, "overlay_pointer_request", ev)
}

// PostSelect handles POST /api/v1/sessions/:id/overlay/select
func (h *OverlayHandlers) PostSelect(c *gin.Context) {
	h.apply(c, "overlay_select_request", services.PointerEvent{Type: services.EventSelect})
}

// PostClickOutside handles POST /api/v1/sessions/:id/overlay/click-outside
func (h *OverlayHandlers) PostClickOutside(c *gin.Context) {
	h.apply(c, "overlay_click_outside_request", services.PointerEvent{Type: services.EventClickOutside})
}

func (h *OverlayHandlers) apply(c *gin.Context, operation string, ev services.PointerEvent) {
	sessionID := c.Param("id")
	marker := h.perfTracker.StartOperation(operation, sessionID)
	defer finish(h.perfTracker, h.logger, marker)

	state, err := h.placementService.Apply(sessionID, ev)
	if err != nil {
		respondError(c, h.logger, marker, err)
		return
	}
	h.hub.Broadcast(sessionID, OverlayMessage{Type: "overlay", Overlay: &state})
	c.JSON(http.StatusOK, state)
}

// GetStream handles GET /api/v1/sessions/:id/overlay/ws. Clients send
// PointerEvent JSON frames; every state change is pushed to all clients of
// the session.
func (h *OverlayHandlers) GetStream(c *gin.Context) {
	sessionID := c.Param("id")
	state, stateErr := h.placementService.State(sessionID)
	if errors.Is(stateErr, services.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": stateErr.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithSession(logging.ChannelHTTP, sessionID).Warn("Websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	log := h.logger.WithSession(logging.ChannelSession, sessionID)
	updates := h.hub.AddClient(sessionID)
	defer h.hub.RemoveClient(updates, sessionID)

	replies := make(chan OverlayMessage, 4)
	if stateErr == nil {
		replies <- OverlayMessage{Type: "overlay", Overlay: &state}
	}

	done := make(chan struct{})
	go h.writeLoop(conn, updates, replies, done)
	h.readLoop(conn, sessionID, replies)
	close(done)
	log.Debug("Overlay stream closed")
}

// readLoop applies incoming pointer events until the connection drops.
func (h *OverlayHandlers) readLoop(conn *websocket.Conn, sessionID string, replies chan<- OverlayMessage) {
	readWait := 2 * h.pingInterval
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		var ev services.PointerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithSession(logging.ChannelSession, sessionID).Debug("Overlay stream read failed", "error", err.Error())
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		state, err := h.placementService.Apply(sessionID, ev)
		if err != nil {
			select {
			case replies <- OverlayMessage{Type: "error", Error: err.Error()}:
			default:
			}
			if errors.Is(err, services.ErrSessionNotFound) {
				return
			}
			continue
		}
		h.hub.Broadcast(sessionID, OverlayMessage{Type: "overlay", Overlay: &state})
	}
}

// writeLoop is the only writer on conn.
func (h *OverlayHandlers) writeLoop(conn *websocket.Conn, updates <-chan []byte, replies <-chan OverlayMessage, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				return
			}
		case reply := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(reply); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
