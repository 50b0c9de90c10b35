// Package profile provides the SQL implementation of the profile repository.
package profile

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/profile"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/persistence/database"
)

// SQLProfileRepository is the SQL-based implementation of profile.Repository.
type SQLProfileRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLProfileRepository creates a new instance of the repository.
func NewSQLProfileRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLProfileRepository {
	return &SQLProfileRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a Profile by id. A missing profile yields (nil, nil).
func (r *SQLProfileRepository) FindByID(id string) (*profile.Profile, error) {
	const query = `SELECT id, images_generated, paid, created_at, changed FROM profiles WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading profile by ID", "id", id)

	p, err := scanProfile(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Profile not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load profile by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "profiles")
	return p, nil
}

// Ensure returns the profile, creating an empty one first if needed.
func (r *SQLProfileRepository) Ensure(id string) (*profile.Profile, error) {
	const query = `INSERT INTO profiles (id, images_generated, paid, created_at, changed)
		VALUES (?, 0, 0, ?, ?)
		ON CONFLICT(id) DO NOTHING`

	if id == "" {
		return nil, fmt.Errorf("profile id is required")
	}

	start := time.Now()
	now := time.Now().UTC()
	if _, err := r.db.Exec(query, id, now, now); err != nil {
		r.logger.Database().Error("Profile ensure failed", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "profiles")

	p, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s vanished after insert", id)
	}
	return p, nil
}

// IncrementImagesGenerated bumps the usage counter of an existing profile.
func (r *SQLProfileRepository) IncrementImagesGenerated(id string) error {
	const query = `UPDATE profiles SET images_generated = images_generated + 1, changed = ? WHERE id = ?`
	return r.update(query, "increment", id, time.Now().UTC(), id)
}

// SetPaid flags a profile as paid or unpaid.
func (r *SQLProfileRepository) SetPaid(id string, paid bool) error {
	const query = `UPDATE profiles SET paid = ?, changed = ? WHERE id = ?`
	return r.update(query, "set paid", id, paid, time.Now().UTC(), id)
}

func (r *SQLProfileRepository) update(query, op, id string, args ...any) error {
	start := time.Now()
	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Database().Error("Profile update failed", "operation", op, "error", err.Error(), "id", id)
		return fmt.Errorf("failed to %s profile: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s profile: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to %s profile: %s not found", op, id)
	}
	r.logger.Database().Info("Profile updated", "operation", op, "id", id, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "profiles")
	return nil
}

func scanProfile(row *sql.Row) (*profile.Profile, error) {
	var p profile.Profile
	var paid int
	if err := row.Scan(&p.ID, &p.ImagesGenerated, &paid, &p.CreatedAt, &p.Changed); err != nil {
		return nil, err
	}
	p.Paid = paid != 0
	return &p, nil
}
