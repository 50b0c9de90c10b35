package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/generation"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// BackgroundService sets the background of a placement, either generated
// from a prompt or uploaded.
type BackgroundService struct {
	sessions  *SessionService
	generator generation.Generator
	maxUpload int64
	logger    *logging.ChanneledLogger
	run       Runner
}

// NewBackgroundService creates a background service. generator may be nil
// when no generation endpoint is configured.
func NewBackgroundService(sessions *SessionService, generator generation.Generator, maxUpload int64,
	logger *logging.ChanneledLogger, run Runner) *BackgroundService {
	if run == nil {
		run = Async
	}
	return &BackgroundService{
		sessions:  sessions,
		generator: generator,
		maxUpload: maxUpload,
		logger:    logger,
		run:       run,
	}
}

// BeginGeneration starts generating a background from prompt. An empty
// prompt does nothing and reports false.
func (s *BackgroundService) BeginGeneration(sessionID, prompt string) (bool, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return false, nil
	}
	if s.generator == nil {
		return false, ErrGenerationUnavailable
	}
	if err := sess.BeginGeneration(); err != nil {
		return false, err
	}

	s.logger.WithSession(logging.ChannelGeneration, sess.ID).Info("Background generation started", "promptLength", len(prompt))
	s.run(func() { s.generate(sess, prompt) })
	return true, nil
}

func (s *BackgroundService) generate(sess *session.Session, prompt string) {
	start := time.Now()
	log := s.logger.WithSession(logging.ChannelGeneration, sess.ID)

	data, err := s.generator.Generate(context.Background(), prompt)
	if err != nil {
		log.Error("Background generation failed", "error", err.Error(), "duration", time.Since(start))
		sess.FailGeneration(err)
		return
	}
	bg, err := media.Decode(data)
	if err != nil {
		err = fmt.Errorf("generation returned an unreadable image: %w", err)
		log.Error("Background generation failed", "error", err.Error(), "duration", time.Since(start))
		sess.FailGeneration(err)
		return
	}

	sess.CompleteGeneration(bg.Image)
	s.sessions.saveAsset(sess.ID, media.KindBackground, bg)
	log.Info("Background generation completed", "width", bg.Width(), "height", bg.Height(), "duration", time.Since(start))
}

// SetBackground installs an uploaded background and returns its natural size.
func (s *BackgroundService) SetBackground(sessionID string, up Upload) (geometry.RasterSize, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return geometry.RasterSize{}, err
	}
	if err := media.ValidateUpload(up.Filename, int64(len(up.Data)), s.maxUpload); err != nil {
		return geometry.RasterSize{}, err
	}
	bg, err := media.Decode(up.Data)
	if err != nil {
		return geometry.RasterSize{}, err
	}

	sess.SetBackground(bg.Image)
	s.sessions.saveAsset(sess.ID, media.KindBackground, bg)
	s.logger.WithSession(logging.ChannelSession, sess.ID).Info("Background uploaded", "width", bg.Width(), "height", bg.Height())
	return geometry.RasterSize{Width: float64(bg.Width()), Height: float64(bg.Height())}, nil
}
