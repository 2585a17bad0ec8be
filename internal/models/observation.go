package models

import "time"

// ObservationForm is one classroom observation session.
type ObservationForm struct {
	ID              string    `db:"id" json:"id"`
	School          string    `db:"school" json:"school"`
	Grade           string    `db:"grade" json:"grade"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	ClassComment    *string   `db:"class_comment" json:"class_comment,omitempty"`
	SemesterID      *string   `db:"semester_id" json:"semester_id,omitempty"`
	AuthorID        string    `db:"author_id" json:"author_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ObservationEntry is a timestamped row of an observation form.
type ObservationEntry struct {
	ID          string    `db:"id" json:"id"`
	FormID      string    `db:"form_id" json:"form_id"`
	TimeLabel   string    `db:"time_label" json:"time_label"`
	Description string    `db:"description" json:"description"`
	Comment     string    `db:"comment" json:"comment"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ObservationFormDetail bundles a form with its entries in insertion order.
type ObservationFormDetail struct {
	ObservationForm
	Entries []ObservationEntry `json:"entries"`
}

// ObservationFormInput carries the editable fields of a form.
type ObservationFormInput struct {
	School          string  `json:"school" validate:"required,max=200"`
	Grade           string  `json:"grade" validate:"required,max=50"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1,max=1440"`
	ClassComment    *string `json:"class_comment" validate:"omitempty,max=5000"`
	SemesterID      *string `json:"semester_id" validate:"omitempty,semester"`
}

// ObservationEntryInput carries the editable fields of an entry.
type ObservationEntryInput struct {
	TimeLabel   string `json:"time_label" validate:"required,max=50"`
	Description string `json:"description" validate:"required,max=5000"`
	Comment     string `json:"comment" validate:"max=5000"`
}

// ObservationSubmission creates a form together with its initial entries.
type ObservationSubmission struct {
	Form    ObservationFormInput    `json:"form" validate:"required"`
	Entries []ObservationEntryInput `json:"entries" validate:"dive"`
}
