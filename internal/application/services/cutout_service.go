package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/removal"
)

// CutoutService uploads photos and obtains their foreground cutouts.
type CutoutService struct {
	sessions  *SessionService
	remover   removal.Remover
	quota     *QuotaService
	limits    session.OverlayLimits
	maxUpload int64
	logger    *logging.ChanneledLogger
	run       Runner
}

// NewCutoutService creates a cutout service. A nil run defaults to Async.
func NewCutoutService(sessions *SessionService, remover removal.Remover, quota *QuotaService,
	limits session.OverlayLimits, maxUpload int64, logger *logging.ChanneledLogger, run Runner) *CutoutService {
	if run == nil {
		run = Async
	}
	return &CutoutService{
		sessions:  sessions,
		remover:   remover,
		quota:     quota,
		limits:    limits,
		maxUpload: maxUpload,
		logger:    logger,
		run:       run,
	}
}

// BeginRemoval validates and stores a new photo, then requests its cutout
// in the background. The call returns once the request is under way; the
// outcome shows up in the session snapshot.
func (s *CutoutService) BeginRemoval(sessionID string, up Upload) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if err := media.ValidateUpload(up.Filename, int64(len(up.Data)), s.maxUpload); err != nil {
		return err
	}
	original, err := media.Decode(up.Data)
	if err != nil {
		return err
	}
	if err := s.quota.Check(sess.ProfileID); err != nil {
		return err
	}

	epoch, err := sess.BeginRemoval(original.Image, up.Filename)
	if err != nil {
		return err
	}
	s.sessions.saveAsset(sess.ID, media.KindOriginal, original)
	s.sessions.dropAsset(sess.ID, media.KindCutout)

	s.logger.WithSession(logging.ChannelRemoval, sess.ID).Info("Background removal started",
		"filename", up.Filename, "width", original.Width(), "height", original.Height())

	s.run(func() { s.remove(sess, epoch, up) })
	return nil
}

func (s *CutoutService) remove(sess *session.Session, epoch uint64, up Upload) {
	start := time.Now()
	log := s.logger.WithSession(logging.ChannelRemoval, sess.ID)

	data, err := s.remover.Remove(context.Background(), up.Filename, up.Data)
	if err != nil {
		log.Error("Background removal failed", "error", err.Error(), "duration", time.Since(start))
		sess.FailRemoval(epoch, err)
		return
	}

	cutout, err := media.Decode(data)
	if err != nil {
		err = fmt.Errorf("removal returned an unreadable image: %w", err)
		log.Error("Background removal failed", "error", err.Error(), "duration", time.Since(start))
		sess.FailRemoval(epoch, err)
		return
	}

	applied, err := sess.CompleteRemoval(epoch, cutout.Image, s.limits)
	if err != nil {
		log.Error("Cutout rejected", "error", err.Error())
		return
	}
	if !applied {
		log.Debug("Discarding cutout for a replaced photo")
		return
	}

	s.sessions.saveAsset(sess.ID, media.KindCutout, cutout)
	if err := s.quota.Record(sess.ProfileID); err != nil {
		log.Error("Failed to record usage", "error", err.Error(), "profileId", sess.ProfileID)
	}
	log.Info("Background removal completed",
		"width", cutout.Width(), "height", cutout.Height(), "duration", time.Since(start))
}
