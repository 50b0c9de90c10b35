package services

import (
	"fmt"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/domain/placement"
)

// Pointer event types accepted from clients.
const (
	EventDown         = "down"
	EventMove         = "move"
	EventUp           = "up"
	EventLeave        = "leave"
	EventHandle       = "handle"
	EventSelect       = "select"
	EventClickOutside = "click-outside"
)

// PointerEvent is a gesture step in container-relative screen pixels.
type PointerEvent struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Handle string  `json:"handle,omitempty"`
}

// PlacementService drives the overlay interaction state machine.
type PlacementService struct {
	sessions *SessionService
}

// NewPlacementService creates a placement service.
func NewPlacementService(sessions *SessionService) *PlacementService {
	return &PlacementService{sessions: sessions}
}

// Apply feeds one pointer event to the session's overlay.
func (s *PlacementService) Apply(sessionID string, ev PointerEvent) (placement.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return placement.State{}, err
	}

	var step func(o *placement.Overlay)
	p := geometry.ScreenPoint{X: ev.X, Y: ev.Y}

	switch ev.Type {
	case EventDown:
		step = func(o *placement.Overlay) { o.PointerDown(p) }
	case EventMove:
		step = func(o *placement.Overlay) { o.PointerMove(p) }
	case EventUp:
		step = func(o *placement.Overlay) { o.PointerUp() }
	case EventLeave:
		step = func(o *placement.Overlay) { o.PointerLeave() }
	case EventSelect:
		step = func(o *placement.Overlay) { o.Select() }
	case EventClickOutside:
		step = func(o *placement.Overlay) { o.ClickOutside() }
	case EventHandle:
		h, err := placement.ParseHandle(ev.Handle)
		if err != nil {
			return placement.State{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		step = func(o *placement.Overlay) { o.HandleDown(h, p) }
	default:
		return placement.State{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, ev.Type)
	}

	return sess.UpdateOverlay(step)
}

// State returns the overlay state without changing it.
func (s *PlacementService) State(sessionID string) (placement.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return placement.State{}, err
	}
	return sess.UpdateOverlay(func(*placement.Overlay) {})
}
