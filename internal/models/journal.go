package models

import "time"

// JournalEntry is a personal reflective record.
type JournalEntry struct {
	ID                   string    `db:"id" json:"id"`
	AuthorID             string    `db:"author_id" json:"author_id"`
	Body                 string    `db:"body" json:"body"`
	Mood                 int       `db:"mood" json:"mood"`
	Effort               int       `db:"effort" json:"effort"`
	SharedWithSupervisor bool      `db:"shared_with_supervisor" json:"shared_with_supervisor"`
	EntryDate            time.Time `db:"entry_date" json:"entry_date"`
	SemesterID           *string   `db:"semester_id" json:"semester_id,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// JournalEntryInput carries the editable fields of a journal entry.
type JournalEntryInput struct {
	Body                 string     `json:"body" validate:"max=20000"`
	Mood                 int        `json:"mood" validate:"required,min=1,max=5"`
	Effort               int        `json:"effort" validate:"required,min=1,max=5"`
	SharedWithSupervisor bool       `json:"shared_with_supervisor"`
	EntryDate            *time.Time `json:"entry_date"`
	SemesterID           *string    `json:"semester_id" validate:"omitempty,semester"`
}

// JournalFilter narrows journal listings.
type JournalFilter struct {
	SemesterID string
	From       *time.Time
	To         *time.Time
}
