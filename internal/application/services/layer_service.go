package services

import (
	"fmt"

	"github.com/AtRiskMedia/cutout-go/internal/domain/textlayer"
)

// LayerService edits the text layers of a session.
type LayerService struct {
	sessions *SessionService
}

// NewLayerService creates a layer service.
func NewLayerService(sessions *SessionService) *LayerService {
	return &LayerService{sessions: sessions}
}

// List returns the layers in insertion order.
func (s *LayerService) List(sessionID string) ([]textlayer.Layer, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Layers(), nil
}

// Add appends a default layer.
func (s *LayerService) Add(sessionID string) (textlayer.Layer, error) {
	var added textlayer.Layer
	err := s.edit(sessionID, func(set *textlayer.Set) error {
		added = set.Add()
		return nil
	})
	return added, err
}

// Update applies a patch to one layer.
func (s *LayerService) Update(sessionID string, layerID int, patch textlayer.Patch) (textlayer.Layer, error) {
	var updated textlayer.Layer
	err := s.edit(sessionID, func(set *textlayer.Set) error {
		l, ok := set.Update(layerID, patch)
		if !ok {
			return fmt.Errorf("%w: %d", ErrLayerNotFound, layerID)
		}
		updated = l
		return nil
	})
	return updated, err
}

// Duplicate copies a layer with a fresh id.
func (s *LayerService) Duplicate(sessionID string, layerID int) (textlayer.Layer, error) {
	var dup textlayer.Layer
	err := s.edit(sessionID, func(set *textlayer.Set) error {
		if _, ok := set.Get(layerID); !ok {
			return fmt.Errorf("%w: %d", ErrLayerNotFound, layerID)
		}
		l, err := set.Duplicate(layerID)
		if err != nil {
			return err
		}
		dup = l
		return nil
	})
	return dup, err
}

// Remove deletes a layer.
func (s *LayerService) Remove(sessionID string, layerID int) error {
	return s.edit(sessionID, func(set *textlayer.Set) error {
		if !set.Remove(layerID) {
			return fmt.Errorf("%w: %d", ErrLayerNotFound, layerID)
		}
		return nil
	})
}

// Previews returns the screen preview style of every layer.
func (s *LayerService) Previews(sessionID string) ([]textlayer.PreviewStyle, error) {
	layers, err := s.List(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]textlayer.PreviewStyle, len(layers))
	for i, l := range layers {
		out[i] = textlayer.Preview(l)
	}
	return out, nil
}

func (s *LayerService) edit(sessionID string, fn func(set *textlayer.Set) error) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.UpdateLayers(fn)
}
