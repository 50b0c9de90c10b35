// Package placement tracks the movable, resizable foreground overlay that is
// positioned over a background image in screen space.
package placement

import (
	"fmt"
	"math"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
)

// Handle identifies one of the four corner resize handles.
type Handle string

const (
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
)

// ParseHandle validates a handle identifier received from a client.
func ParseHandle(s string) (Handle, error) {
	switch h := Handle(s); h {
	case HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return h, nil
	}
	return "", fmt.Errorf("unknown resize handle %q", s)
}

func (h Handle) onLeft() bool  { return h == HandleTopLeft || h == HandleBottomLeft }
func (h Handle) onRight() bool { return h == HandleTopRight || h == HandleBottomRight }
func (h Handle) onTop() bool   { return h == HandleTopLeft || h == HandleTopRight }

// Interaction is the gesture currently in progress: Idle, Dragging or Resizing.
type Interaction interface {
	interaction()
	Mode() string
}

// Idle means no pointer gesture is active.
type Idle struct{}

// Dragging records where inside the overlay the pointer grabbed it.
type Dragging struct {
	Offset geometry.ScreenPoint
}

// ResizeStart is the snapshot taken when a resize gesture begins.
type ResizeStart struct {
	Width    float64
	Height   float64
	Pointer  geometry.ScreenPoint
	Position geometry.ScreenPoint
}

// Resizing records the active handle and the gesture's starting geometry.
type Resizing struct {
	Handle Handle
	Start  ResizeStart
}

func (Idle) interaction()     {}
func (Dragging) interaction() {}
func (Resizing) interaction() {}

func (Idle) Mode() string     { return "idle" }
func (Dragging) Mode() string { return "dragging" }
func (Resizing) Mode() string { return "resizing" }

// Overlay is the screen-space transform of the foreground cutout.
// The aspect ratio is fixed at creation and every resize preserves it.
type Overlay struct {
	Position    geometry.ScreenPoint
	Size        geometry.ScreenSize
	AspectRatio float64
	Selected    bool

	minWidth    float64
	interaction Interaction
}

// NewOverlay sizes a fresh overlay from the foreground's natural dimensions.
// The initial width is the natural width capped at maxInitial and floored at
// minWidth; height follows from the aspect ratio.
func NewOverlay(natural geometry.RasterSize, maxInitial, minWidth float64) (*Overlay, error) {
	aspect := natural.AspectRatio()
	if aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return nil, fmt.Errorf("invalid foreground size %vx%v", natural.Width, natural.Height)
	}

	width := math.Max(minWidth, math.Min(maxInitial, natural.Width))
	return &Overlay{
		Size:        geometry.ScreenSize{Width: width, Height: width / aspect},
		AspectRatio: aspect,
		minWidth:    minWidth,
		interaction: Idle{},
	}, nil
}

// Interaction returns the gesture in progress.
func (o *Overlay) Interaction() Interaction {
	if o.interaction == nil {
		return Idle{}
	}
	return o.interaction
}

// Rect returns the overlay placement in screen space.
func (o *Overlay) Rect() geometry.ScreenRect {
	return geometry.ScreenRect{Position: o.Position, Size: o.Size}
}

// Select marks the overlay selected so its resize handles are shown.
func (o *Overlay) Select() {
	o.Selected = true
}

// ClickOutside clears the selection and abandons any resize in progress.
func (o *Overlay) ClickOutside() {
	o.Selected = false
	if _, ok := o.interaction.(Resizing); ok {
		o.interaction = Idle{}
	}
}

// PointerDown starts a drag from a pointer press over the overlay body.
func (o *Overlay) PointerDown(p geometry.ScreenPoint) {
	o.Selected = true
	o.interaction = Dragging{Offset: p.Sub(o.Position)}
}

// HandleDown starts a resize from one of the corner handles. Handles are only
// rendered while the overlay is selected, so a press on an unselected overlay
// is ignored and false is returned.
func (o *Overlay) HandleDown(h Handle, p geometry.ScreenPoint) bool {
	if !o.Selected {
		return false
	}
	o.interaction = Resizing{
		Handle: h,
		Start: ResizeStart{
			Width:    o.Size.Width,
			Height:   o.Size.Height,
			Pointer:  p,
			Position: o.Position,
		},
	}
	return true
}

// PointerMove advances the active gesture. Dragging is unclamped: the overlay
// may leave the container entirely.
func (o *Overlay) PointerMove(p geometry.ScreenPoint) {
	switch g := o.Interaction().(type) {
	case Dragging:
		o.Position = p.Sub(g.Offset)
	case Resizing:
		o.resize(g, p)
	}
}

// PointerUp ends any gesture.
func (o *Overlay) PointerUp() {
	o.interaction = Idle{}
}

// PointerLeave ends any gesture when the pointer exits the container.
func (o *Overlay) PointerLeave() {
	o.interaction = Idle{}
}

func (o *Overlay) resize(r Resizing, p geometry.ScreenPoint) {
	delta := p.Sub(r.Start.Pointer)

	width := r.Start.Width
	pos := r.Start.Position

	switch {
	case r.Handle.onRight():
		width = math.Max(o.minWidth, r.Start.Width+delta.X)
	case r.Handle.onLeft():
		width = math.Max(o.minWidth, r.Start.Width-delta.X)
		// keep the right edge anchored
		pos.X = r.Start.Position.X + (r.Start.Width - width)
	}

	height := width / o.AspectRatio
	if r.Handle.onTop() {
		// keep the bottom edge anchored
		pos.Y = r.Start.Position.Y + (r.Start.Height - height)
	}

	o.Size = geometry.ScreenSize{Width: width, Height: height}
	o.Position = pos
}

// State is a serializable snapshot of the overlay.
type State struct {
	Position    geometry.ScreenPoint `json:"position"`
	Size        geometry.ScreenSize  `json:"size"`
	AspectRatio float64              `json:"aspectRatio"`
	Selected    bool                 `json:"selected"`
	Mode        string               `json:"mode"`
	Handle      Handle               `json:"handle,omitempty"`
}

// Snapshot captures the current overlay state.
func (o *Overlay) Snapshot() State {
	st := State{
		Position:    o.Position,
		Size:        o.Size,
		AspectRatio: o.AspectRatio,
		Selected:    o.Selected,
		Mode:        o.Interaction().Mode(),
	}
	if r, ok := o.interaction.(Resizing); ok {
		st.Handle = r.Handle
	}
	return st
}
