// Package session provides the editing session entity. A session owns the
// images and compositor state of one browser tab, and every mutation happens
// under the session's own lock.
package session

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/compositing"
	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/domain/placement"
	"github.com/AtRiskMedia/cutout-go/internal/domain/textlayer"
	"github.com/oklog/ulid/v2"
)

var (
	ErrBusy      = errors.New("operation already in progress")
	ErrNoOverlay = errors.New("no foreground to place yet")
	ErrNoImage   = errors.New("no image uploaded yet")
)

// OverlayLimits bounds the initial and minimum overlay width.
type OverlayLimits struct {
	MaxInitial float64
	MinWidth   float64
}

// Session is one editing workspace.
type Session struct {
	mu sync.Mutex

	ID        string
	ProfileID string

	original     image.Image
	originalName string
	cutout       image.Image
	background   image.Image

	overlay *placement.Overlay
	layers  *textlayer.Set

	removing   bool
	generating bool
	setupDone  bool
	lastError  string

	// epoch changes whenever the original is replaced so late removal
	// results for an older photo are dropped.
	epoch uint64

	CreatedAt    time.Time
	lastActivity time.Time
}

// New creates an empty session with a fresh ULID.
func New(profileID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           ulid.Make().String(),
		ProfileID:    profileID,
		layers:       textlayer.NewSet(),
		CreatedAt:    now,
		lastActivity: now,
	}
}

// Touch records activity for idle eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now().UTC()
	s.mu.Unlock()
}

// LastActivity is the time of the most recent Touch.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// BeginRemoval replaces the original photo and marks removal in flight.
// The cutout, overlay, text layers and setup flag are discarded. The
// returned epoch must be handed to CompleteRemoval or FailRemoval.
func (s *Session) BeginRemoval(original image.Image, filename string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removing {
		return 0, ErrBusy
	}
	s.epoch++
	s.original = original
	s.originalName = filename
	s.cutout = nil
	s.overlay = nil
	s.layers.Reset()
	s.setupDone = false
	s.removing = true
	s.lastError = ""
	s.lastActivity = time.Now().UTC()
	return s.epoch, nil
}

// CompleteRemoval stores the cutout and initialises the overlay from its
// natural size. It reports false when the result belongs to a replaced photo.
func (s *Session) CompleteRemoval(epoch uint64, cutout image.Image, limits OverlayLimits) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false, nil
	}
	s.removing = false

	overlay, err := placement.NewOverlay(compositing.NaturalSize(cutout), limits.MaxInitial, limits.MinWidth)
	if err != nil {
		s.lastError = err.Error()
		return false, err
	}
	s.cutout = cutout
	s.overlay = overlay
	s.setupDone = true
	s.lastError = ""
	return true, nil
}

// FailRemoval clears the in-flight flag and records the error.
func (s *Session) FailRemoval(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	s.removing = false
	if err != nil {
		s.lastError = err.Error()
	}
}

// BeginGeneration marks background generation in flight.
func (s *Session) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generating {
		return ErrBusy
	}
	s.generating = true
	s.lastError = ""
	s.lastActivity = time.Now().UTC()
	return nil
}

// CompleteGeneration installs a generated background.
func (s *Session) CompleteGeneration(bg image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	s.background = bg
}

// FailGeneration clears the in-flight flag and records the error.
func (s *Session) FailGeneration(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		s.lastError = err.Error()
	}
}

// SetBackground installs an uploaded background.
func (s *Session) SetBackground(bg image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
	s.lastActivity = time.Now().UTC()
}

// Cutout returns the foreground cutout, if any.
func (s *Session) Cutout() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cutout
}

// OriginalName is the filename of the uploaded photo.
func (s *Session) OriginalName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.originalName
}

// UpdateOverlay runs fn against the overlay under the session lock and
// returns the resulting state.
func (s *Session) UpdateOverlay(fn func(o *placement.Overlay)) (placement.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlay == nil {
		return placement.State{}, ErrNoOverlay
	}
	fn(s.overlay)
	s.lastActivity = time.Now().UTC()
	return s.overlay.Snapshot(), nil
}

// UpdateLayers runs fn against the layer set under the session lock.
func (s *Session) UpdateLayers(fn func(set *textlayer.Set) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now().UTC()
	return fn(s.layers)
}

// Layers returns a copy of the text layers.
func (s *Session) Layers() []textlayer.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Layers()
}

// PlacementScene captures what the placement export needs. The container
// comes from the client at export time.
func (s *Session) PlacementScene(container geometry.Container) compositing.PlacementScene {
	s.mu.Lock()
	defer s.mu.Unlock()

	scene := compositing.PlacementScene{
		Background: s.background,
		Foreground: s.cutout,
		Container:  container,
	}
	if s.overlay != nil {
		scene.Overlay = s.overlay.Rect()
	} else {
		scene.Foreground = nil
	}
	return scene
}

// TextScene captures what the text-behind export needs.
func (s *Session) TextScene(fontScale float64) compositing.TextScene {
	s.mu.Lock()
	defer s.mu.Unlock()

	return compositing.TextScene{
		Original:  s.original,
		Cutout:    s.cutout,
		Layers:    s.layers.Layers(),
		Ready:     s.setupDone,
		FontScale: fontScale,
	}
}

// Snapshot is the serializable view of a session.
type Snapshot struct {
	ID                   string               `json:"id"`
	ProfileID            string               `json:"profileId,omitempty"`
	Original             *geometry.RasterSize `json:"original,omitempty"`
	Cutout               *geometry.RasterSize `json:"cutout,omitempty"`
	Background           *geometry.RasterSize `json:"background,omitempty"`
	RemovingBackground   bool                 `json:"removingBackground"`
	GeneratingBackground bool                 `json:"generatingBackground"`
	SetupDone            bool                 `json:"setupDone"`
	LastError            string               `json:"lastError,omitempty"`
	Overlay              *placement.State     `json:"overlay,omitempty"`
	Layers               []textlayer.Layer    `json:"layers"`
	CreatedAt            time.Time            `json:"createdAt"`
	LastActivity         time.Time            `json:"lastActivity"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:                   s.ID,
		ProfileID:            s.ProfileID,
		Original:             sizeOf(s.original),
		Cutout:               sizeOf(s.cutout),
		Background:           sizeOf(s.background),
		RemovingBackground:   s.removing,
		GeneratingBackground: s.generating,
		SetupDone:            s.setupDone,
		LastError:            s.lastError,
		Layers:               s.layers.Layers(),
		CreatedAt:            s.CreatedAt,
		LastActivity:         s.lastActivity,
	}
	if s.overlay != nil {
		st := s.overlay.Snapshot()
		snap.Overlay = &st
	}
	return snap
}

func sizeOf(img image.Image) *geometry.RasterSize {
	if img == nil {
		return nil
	}
	sz := compositing.NaturalSize(img)
	return &sz
}
