package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

const profileColumns = `id, email, name, role, semester_id, created_at, updated_at`

// ProfileRepository reads and updates user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID returns a profile.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Ensure creates a student profile for a first-time user and returns the stored row.
func (r *ProfileRepository) Ensure(ctx context.Context, id, email string) (*models.Profile, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO profiles (id, email, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
RETURNING ` + profileColumns
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id, email, models.ProfileRoleStudent, now); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return &profile, nil
}

// UpdateSemester sets the active semester.
func (r *ProfileRepository) UpdateSemester(ctx context.Context, id, semesterID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET semester_id = $1, updated_at = $2 WHERE id = $3`, semesterID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update profile semester: %w", err)
	}
	return expectAffected(res, "update profile semester")
}

// UpdateName sets the display name.
func (r *ProfileRepository) UpdateName(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET name = $1, updated_at = $2 WHERE id = $3`, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update profile name: %w", err)
	}
	return expectAffected(res, "update profile name")
}
