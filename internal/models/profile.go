package models

import "time"

// ProfileRole distinguishes students from supervisors.
type ProfileRole string

const (
	ProfileRoleStudent    ProfileRole = "student"
	ProfileRoleSupervisor ProfileRole = "supervisor"
)

// Profile mirrors the identity provider user with app-side preferences.
type Profile struct {
	ID         string      `db:"id" json:"id"`
	Email      string      `db:"email" json:"email"`
	Name       *string     `db:"name" json:"name,omitempty"`
	Role       ProfileRole `db:"role" json:"role"`
	SemesterID *string     `db:"semester_id" json:"semester_id,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// UpdateSemesterRequest selects the active semester.
type UpdateSemesterRequest struct {
	SemesterID string `json:"semester_id" validate:"required,semester"`
}

// UpdateNameRequest changes the display name.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}
