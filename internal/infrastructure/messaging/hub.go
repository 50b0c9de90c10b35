// Package messaging provides the session update hub behind the overlay
// websocket stream.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// clientBuffer is the number of updates queued per client before drops.
const clientBuffer = 16

// Hub manages session-scoped client channels.
type Hub struct {
	sessions map[string][]chan []byte // sessionId -> []channels
	mu       sync.Mutex
	logger   *logging.ChanneledLogger
}

// NewHub creates an empty hub.
func NewHub(logger *logging.ChanneledLogger) *Hub {
	return &Hub{
		sessions: make(map[string][]chan []byte),
		logger:   logger,
	}
}

// AddClient registers a new client for sessionID.
func (h *Hub) AddClient(sessionID string) chan []byte {
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = append(h.sessions[sessionID], ch)

	h.logger.WithSession(logging.ChannelSession, sessionID).Debug("Stream client registered", "clients", len(h.sessions[sessionID]))
	return ch
}

// RemoveClient unregisters ch and closes it.
func (h *Hub) RemoveClient(ch chan []byte, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	kept := make([]chan []byte, 0, len(clients))
	for _, c := range clients {
		if c == ch {
			close(c)
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		delete(h.sessions, sessionID)
	} else {
		h.sessions[sessionID] = kept
	}
	h.logger.WithSession(logging.ChannelSession, sessionID).Debug("Stream client unregistered", "clients", len(kept))
}

// CloseSession unregisters every client of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sessions[sessionID] {
		close(c)
	}
	delete(h.sessions, sessionID)
}

// ClientCount returns the number of clients connected to sessionID.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Broadcast sends payload as JSON to every client of sessionID. Clients
// whose buffer is full miss the update.
func (h *Hub) Broadcast(sessionID string, payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		h.logger.LogError(logging.ChannelSession, "broadcast_marshal", err, sessionID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.sessions[sessionID] {
		select {
		case ch <- message:
		default:
			h.logger.WithSession(logging.ChannelSession, sessionID).Warn("Stream client full, update dropped")
		}
	}
}
