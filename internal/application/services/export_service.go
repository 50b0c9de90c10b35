package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/compositing"
	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// Export is a rendered PNG ready for download.
type Export struct {
	Filename string
	Data     []byte
}

// ExportService rasterizes the three downloadable images.
type ExportService struct {
	sessions  *SessionService
	factory   compositing.Factory
	fontScale float64
	logger    *logging.ChanneledLogger
}

// NewExportService creates an export service drawing onto canvases from factory.
func NewExportService(sessions *SessionService, factory compositing.Factory, fontScale float64, logger *logging.ChanneledLogger) *ExportService {
	return &ExportService{
		sessions:  sessions,
		factory:   factory,
		fontScale: fontScale,
		logger:    logger,
	}
}

// Cutout returns the foreground cutout as PNG.
func (s *ExportService) Cutout(sessionID string) (*Export, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	cutout := sess.Cutout()
	if cutout == nil {
		return nil, s.notReady(sessionID, "cutout")
	}
	data, err := media.EncodePNG(cutout)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: compositing.CutoutFilename, Data: data}, nil
}

// Placement renders the foreground over the background at the overlay's
// position, scaled by the container measured by the client.
func (s *ExportService) Placement(sessionID string, container geometry.Container) (*Export, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	scene := sess.PlacementScene(container)
	return s.render(sessionID, "placement", compositing.PlacementFilename, func() (compositing.Canvas, error) {
		return compositing.ExportPlacement(s.factory, scene)
	})
}

// TextBehind renders the original, the text layers, then the cutout on top.
func (s *ExportService) TextBehind(sessionID string) (*Export, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	scene := sess.TextScene(s.fontScale)
	return s.render(sessionID, "text_behind", compositing.TextBehindFilename, func() (compositing.Canvas, error) {
		return compositing.ExportTextBehind(s.factory, scene)
	})
}

func (s *ExportService) render(sessionID, kind, filename string, draw func() (compositing.Canvas, error)) (*Export, error) {
	start := time.Now()
	canvas, err := draw()
	if err != nil {
		if errors.Is(err, compositing.ErrNotReady) {
			return nil, s.notReady(sessionID, kind)
		}
		return nil, fmt.Errorf("failed to render %s: %w", kind, err)
	}
	data, err := compositing.Encode(canvas)
	if err != nil {
		return nil, err
	}

	size := canvas.Size()
	s.logger.WithSession(logging.ChannelCompositing, sessionID).Info("Export rendered",
		"kind", kind, "width", size.Width, "height", size.Height, "bytes", len(data), "duration", time.Since(start))
	return &Export{Filename: filename, Data: data}, nil
}

func (s *ExportService) notReady(sessionID, kind string) error {
	s.logger.WithSession(logging.ChannelCompositing, sessionID).Warn("Export skipped, inputs not ready", "kind", kind)
	return compositing.ErrNotReady
}
