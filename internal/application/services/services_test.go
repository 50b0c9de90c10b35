package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/domain/profile"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/caching/sessions"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/rendering"
)

const maxUpload = 5 << 20

func pngOf(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

type fakeRemover struct {
	mu    sync.Mutex
	out   []byte
	err   error
	calls int
}

func (f *fakeRemover) Remove(_ context.Context, _ string, _ []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.out, f.err
}

type fakeGenerator struct {
	out     []byte
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*profile.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: make(map[string]*profile.Profile)}
}

func (m *memProfiles) FindByID(id string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) Ensure(id string) (*profile.Profile, error) {
	m.mu.Lock()
	if _, ok := m.profiles[id]; !ok {
		m.profiles[id] = &profile.Profile{ID: id, CreatedAt: time.Now(), Changed: time.Now()}
	}
	m.mu.Unlock()
	return m.FindByID(id)
}

func (m *memProfiles) IncrementImagesGenerated(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return errors.New("missing")
	}
	p.ImagesGenerated++
	return nil
}

func (m *memProfiles) SetPaid(id string, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return errors.New("missing")
	}
	p.Paid = paid
	return nil
}

type harness struct {
	sessions   *SessionService
	quota      *QuotaService
	cutouts    *CutoutService
	background *BackgroundService
	placement  *PlacementService
	layers     *LayerService
	exports    *ExportService
	remover    *fakeRemover
	generator  *fakeGenerator
	profiles   *memProfiles
	assets     *media.AssetStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.NewDiscardLogger()
	h := &harness{
		remover:   &fakeRemover{},
		generator: &fakeGenerator{},
		profiles:  newMemProfiles(),
		assets:    media.NewAssetStore(t.TempDir(), []int{50}, 80),
	}
	h.quota = NewQuotaService(h.profiles, 2, logger)
	h.sessions = NewSessionService(sessions.NewStore(0, logger), h.assets, h.quota, logger)
	h.cutouts = NewCutoutService(h.sessions, h.remover, h.quota,
		session.OverlayLimits{MaxInitial: 800, MinWidth: 100}, maxUpload, logger, Inline)
	h.background = NewBackgroundService(h.sessions, h.generator, maxUpload, logger, Inline)
	h.placement = NewPlacementService(h.sessions)
	h.layers = NewLayerService(h.sessions)
	h.exports = NewExportService(h.sessions, rendering.NewFactory(rendering.NewFontBook(""), nil), 3, logger)
	return h
}

// ready returns a session whose cutout has arrived.
func (h *harness) ready(t *testing.T, profileID string) *session.Session {
	t.Helper()
	sess, err := h.sessions.Create(profileID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.remover.out = pngOf(t, 200, 100, color.NRGBA{B: 255, A: 255})
	if err := h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "photo.png", Data: pngOf(t, 200, 100, color.NRGBA{R: 255, A: 255})}); err != nil {
		t.Fatalf("BeginRemoval: %v", err)
	}
	return sess
}
