package services

import (
	"errors"
	"fmt"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/caching/sessions"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// SessionService creates, looks up and drops editing sessions.
type SessionService struct {
	store  *sessions.Store
	assets *media.AssetStore
	quota  *QuotaService
	logger *logging.ChanneledLogger
}

// NewSessionService creates a session service.
func NewSessionService(store *sessions.Store, assets *media.AssetStore, quota *QuotaService, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{store: store, assets: assets, quota: quota, logger: logger}
}

// Create opens a session, registering profileID when given.
func (s *SessionService) Create(profileID string) (*session.Session, error) {
	if err := s.quota.Ensure(profileID); err != nil {
		return nil, err
	}
	sess, err := s.store.Create(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.WithSession(logging.ChannelSession, sess.ID).Info("Session created", "anonymous", profileID == "")
	return sess, nil
}

// Get returns a live session and records activity on it.
func (s *SessionService) Get(id string) (*session.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Touch()
	return sess, nil
}

// Snapshot returns the serializable state of a session.
func (s *SessionService) Snapshot(id string) (session.Snapshot, error) {
	sess, err := s.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Delete drops a session and its stored assets.
func (s *SessionService) Delete(id string) error {
	if !s.store.Delete(id) {
		return ErrSessionNotFound
	}
	s.Evicted(id)
	return nil
}

// Evicted removes the assets of a session that left the store.
func (s *SessionService) Evicted(id string) {
	if err := s.assets.RemoveSession(id); err != nil {
		s.logger.LogError(logging.ChannelSession, "remove_assets", err, id)
		return
	}
	s.logger.WithSession(logging.ChannelSession, id).Info("Session closed")
}

// Asset returns a stored session image: the PNG when width is 0, otherwise
// the WebP preview at that width.
func (s *SessionService) Asset(id string, kind media.Kind, width int) ([]byte, string, error) {
	if _, err := s.Get(id); err != nil {
		return nil, "", err
	}
	if width == 0 {
		data, err := s.assets.Open(id, kind)
		return data, "image/png", err
	}
	data, err := s.assets.OpenThumbnail(id, kind, width)
	return data, "image/webp", err
}

// saveAsset stores an image, logging rather than failing the edit.
func (s *SessionService) saveAsset(id string, kind media.Kind, img *media.Image) {
	if img == nil {
		return
	}
	if _, err := s.assets.Save(id, kind, img.Image); err != nil {
		s.logger.LogError(logging.ChannelSession, "save_"+string(kind), err, id)
	}
}

func (s *SessionService) dropAsset(id string, kind media.Kind) {
	if err := s.assets.Delete(id, kind); err != nil && !errors.Is(err, media.ErrAssetNotFound) {
		s.logger.LogError(logging.ChannelSession, "delete_"+string(kind), err, id)
	}
}
