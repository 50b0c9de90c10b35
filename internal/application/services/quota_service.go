package services

import (
	"fmt"

	"github.com/AtRiskMedia/cutout-go/internal/domain/profile"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// QuotaService applies the free removal allowance to profiles.
// Requests without a profile id are anonymous and unmetered.
type QuotaService struct {
	repo      profile.Repository
	freeLimit int
	logger    *logging.ChanneledLogger
}

// ProfileView is a profile with its remaining allowance.
type ProfileView struct {
	*profile.Profile
	FreeLimit int `json:"freeLimit"`
	Remaining int `json:"remaining"`
}

// NewQuotaService creates a quota service. A nil repo disables metering.
func NewQuotaService(repo profile.Repository, freeLimit int, logger *logging.ChanneledLogger) *QuotaService {
	return &QuotaService{repo: repo, freeLimit: freeLimit, logger: logger}
}

// Ensure creates the profile if it does not exist yet.
func (s *QuotaService) Ensure(profileID string) error {
	if profileID == "" || s.repo == nil {
		return nil
	}
	if _, err := s.repo.Ensure(profileID); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// Check returns ErrQuotaExceeded when profileID may not start a removal.
func (s *QuotaService) Check(profileID string) error {
	if profileID == "" || s.repo == nil {
		return nil
	}
	p, err := s.repo.Ensure(profileID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if !p.CanGenerate(s.freeLimit) {
		s.logger.Session().Info("Removal refused by quota", "profileId", profileID, "imagesGenerated", p.ImagesGenerated)
		return ErrQuotaExceeded
	}
	return nil
}

// Record counts one successful removal against profileID.
func (s *QuotaService) Record(profileID string) error {
	if profileID == "" || s.repo == nil {
		return nil
	}
	if err := s.repo.IncrementImagesGenerated(profileID); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// View returns a profile with its remaining allowance.
func (s *QuotaService) View(profileID string) (*ProfileView, error) {
	if s.repo == nil {
		return nil, ErrProfileNotFound
	}
	p, err := s.repo.FindByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return &ProfileView{Profile: p, FreeLimit: s.freeLimit, Remaining: p.Remaining(s.freeLimit)}, nil
}
