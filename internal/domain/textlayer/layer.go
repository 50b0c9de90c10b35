// Package textlayer manages the independent text layers rendered between an
// original image and its foreground cutout.
package textlayer

import (
	"fmt"
	"strings"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/jinzhu/copier"
)

// Layer is one positioned, styled run of text.
type Layer struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	FontFamily  string  `json:"fontFamily"`
	FontSize    float64 `json:"fontSize"`
	FontWeight  int     `json:"fontWeight"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Top         float64 `json:"top"`
	Left        float64 `json:"left"`
	Rotation    float64 `json:"rotation"`
	ShadowColor string  `json:"shadowColor"`
	ShadowSize  float64 `json:"shadowSize"`
}

// Offset is the layer's position as a percentage offset from centre.
func (l Layer) Offset() geometry.CenterOffset {
	return geometry.CenterOffset{Left: l.Left, Top: l.Top}
}

// Default returns a new layer with the editor's stock styling.
func Default(id int) Layer {
	return Layer{
		ID:          id,
		Text:        "edit",
		FontFamily:  "Inter",
		FontSize:    200,
		FontWeight:  800,
		Color:       "white",
		Opacity:     1,
		ShadowColor: "rgba(0, 0, 0, 0.8)",
		ShadowSize:  4,
	}
}

// Patch carries the attributes to change on a layer. Nil fields are left alone.
type Patch struct {
	Text        *string  `json:"text,omitempty"`
	FontFamily  *string  `json:"fontFamily,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontWeight  *int     `json:"fontWeight,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	Top         *float64 `json:"top,omitempty"`
	Left        *float64 `json:"left,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	ShadowColor *string  `json:"shadowColor,omitempty"`
	ShadowSize  *float64 `json:"shadowSize,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) apply(l *Layer) {
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		l.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		l.FontWeight = *p.FontWeight
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.Opacity != nil {
		l.Opacity = *p.Opacity
	}
	if p.Top != nil {
		l.Top = *p.Top
	}
	if p.Left != nil {
		l.Left = *p.Left
	}
	if p.Rotation != nil {
		l.Rotation = *p.Rotation
	}
	if p.ShadowColor != nil {
		l.ShadowColor = *p.ShadowColor
	}
	if p.ShadowSize != nil {
		l.ShadowSize = *p.ShadowSize
	}
}

// Set is the ordered collection of layers for one editing session.
// Order is insertion order; each layer is positioned independently.
type Set struct {
	layers []Layer
}

// NewSet returns an empty layer set.
func NewSet() *Set {
	return &Set{}
}

// Len returns the number of layers.
func (s *Set) Len() int { return len(s.layers) }

// Layers returns a copy of the layers in insertion order.
func (s *Set) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Get returns the layer with the given id.
func (s *Set) Get(id int) (Layer, bool) {
	if i := s.index(id); i >= 0 {
		return s.layers[i], true
	}
	return Layer{}, false
}

func (s *Set) index(id int) int {
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Set) nextID() int {
	maxID := 0
	for _, l := range s.layers {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	return maxID + 1
}

// Add appends a default layer and returns it.
func (s *Set) Add() Layer {
	l := Default(s.nextID())
	s.layers = append(s.layers, l)
	return l
}

// Update applies a patch to the layer with the given id. It reports false
// when no such layer exists.
func (s *Set) Update(id int, p Patch) (Layer, bool) {
	i := s.index(id)
	if i < 0 {
		return Layer{}, false
	}
	p.apply(&s.layers[i])
	return s.layers[i], true
}

// Duplicate appends a copy of the layer with a fresh id.
func (s *Set) Duplicate(id int) (Layer, error) {
	i := s.index(id)
	if i < 0 {
		return Layer{}, fmt.Errorf("layer %d not found", id)
	}

	var dup Layer
	if err := copier.CopyWithOption(&dup, &s.layers[i], copier.Option{DeepCopy: true}); err != nil {
		return Layer{}, fmt.Errorf("failed to copy layer %d: %w", id, err)
	}
	dup.ID = s.nextID()
	s.layers = append(s.layers, dup)
	return dup, nil
}

// Remove deletes the layer with the given id. It reports whether a layer
// was removed.
func (s *Set) Remove(id int) bool {
	kept := s.layers[:0]
	removed := false
	for _, l := range s.layers {
		if l.ID == id {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	s.layers = kept
	return removed
}

// Reset discards every layer.
func (s *Set) Reset() {
	s.layers = nil
}

// PreviewStyle is the CSS needed to render a layer in the screen preview.
type PreviewStyle struct {
	ID        int               `json:"id"`
	Text      string            `json:"text"`
	Style     map[string]string `json:"style"`
	LeftPct   float64           `json:"leftPercent"`
	TopPct    float64           `json:"topPercent"`
	Transform string            `json:"transform"`
}

// Preview places the layer at left+50% / 50%-top, centred on that point and
// rotated about it, with its styling applied directly.
func Preview(l Layer) PreviewStyle {
	off := l.Offset()
	transform := fmt.Sprintf("translate(-50%%, -50%%) rotate(%gdeg)", l.Rotation)

	style := map[string]string{
		"position":   "absolute",
		"left":       fmt.Sprintf("%g%%", off.LeftPercent()),
		"top":        fmt.Sprintf("%g%%", off.TopPercent()),
		"transform":  transform,
		"color":      l.Color,
		"fontFamily": l.FontFamily,
		"fontSize":   fmt.Sprintf("%gpx", l.FontSize),
		"fontWeight": fmt.Sprintf("%d", l.FontWeight),
		"opacity":    fmt.Sprintf("%g", l.Opacity),
		"whiteSpace": "nowrap",
	}
	if l.ShadowSize > 0 && strings.TrimSpace(l.ShadowColor) != "" {
		style["textShadow"] = fmt.Sprintf("0 0 %gpx %s", l.ShadowSize, l.ShadowColor)
	}

	return PreviewStyle{
		ID:        l.ID,
		Text:      l.Text,
		Style:     style,
		LeftPct:   off.LeftPercent(),
		TopPct:    off.TopPercent(),
		Transform: transform,
	}
}
