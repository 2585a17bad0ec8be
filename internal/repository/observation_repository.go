package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/pkg/database"
)

const (
	formColumns  = `id, school, grade, duration_minutes, class_comment, semester_id, author_id, created_at, updated_at`
	entryColumns = `id, form_id, time_label, description, comment, position, created_at`
)

// ObservationRepository persists observation forms and their entries.
type ObservationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository constructs the repository.
func NewObservationRepository(db *sqlx.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// ListForms returns an author's forms, newest first.
func (r *ObservationRepository) ListForms(ctx context.Context, authorID, semesterID string) ([]models.ObservationForm, error) {
	query := `SELECT ` + formColumns + ` FROM observation_forms WHERE author_id = $1`
	args := []interface{}{authorID}
	if semesterID != "" {
		query += ` AND semester_id = $2`
		args = append(args, semesterID)
	}
	query += ` ORDER BY created_at DESC`

	var forms []models.ObservationForm
	if err := r.db.SelectContext(ctx, &forms, query, args...); err != nil {
		return nil, fmt.Errorf("list observation forms: %w", err)
	}
	return forms, nil
}

// GetForm fetches a form by id regardless of author; ownership is checked by the caller.
func (r *ObservationRepository) GetForm(ctx context.Context, id string) (*models.ObservationForm, error) {
	var form models.ObservationForm
	if err := r.db.GetContext(ctx, &form, `SELECT `+formColumns+` FROM observation_forms WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get observation form: %w", err)
	}
	return &form, nil
}

// CreateForm inserts a form and, in the same transaction, its initial entries.
func (r *ObservationRepository) CreateForm(ctx context.Context, form *models.ObservationForm, entries []*models.ObservationEntry) error {
	now := time.Now().UTC()
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	form.CreatedAt = now
	form.UpdatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO observation_forms (` + formColumns + `)
VALUES (:id, :school, :grade, :duration_minutes, :class_comment, :semester_id, :author_id, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, form); err != nil {
			return fmt.Errorf("create observation form: %w", err)
		}
		for i, entry := range entries {
			entry.FormID = form.ID
			entry.Position = i
			if err := insertEntry(ctx, tx, entry, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateForm persists the editable form fields.
func (r *ObservationRepository) UpdateForm(ctx context.Context, form *models.ObservationForm) error {
	form.UpdatedAt = time.Now().UTC()
	const query = `UPDATE observation_forms SET school = :school, grade = :grade, duration_minutes = :duration_minutes,
class_comment = :class_comment, semester_id = :semester_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, form)
	if err != nil {
		return fmt.Errorf("update observation form: %w", err)
	}
	return expectAffected(res, "update observation form")
}

// DeleteForm removes the entries of a form and then the form itself.
func (r *ObservationRepository) DeleteForm(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM observation_entries WHERE form_id = $1`, id); err != nil {
			return fmt.Errorf("delete observation entries: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM observation_forms WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete observation form: %w", err)
		}
		return expectAffected(res, "delete observation form")
	})
}

// ListEntries returns the entries of a form in insertion order.
func (r *ObservationRepository) ListEntries(ctx context.Context, formID string) ([]models.ObservationEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM observation_entries WHERE form_id = $1 ORDER BY position ASC, created_at ASC`
	var entries []models.ObservationEntry
	if err := r.db.SelectContext(ctx, &entries, query, formID); err != nil {
		return nil, fmt.Errorf("list observation entries: %w", err)
	}
	return entries, nil
}

// GetEntry fetches a single entry.
func (r *ObservationRepository) GetEntry(ctx context.Context, id string) (*models.ObservationEntry, error) {
	var entry models.ObservationEntry
	if err := r.db.GetContext(ctx, &entry, `SELECT `+entryColumns+` FROM observation_entries WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get observation entry: %w", err)
	}
	return &entry, nil
}

// AppendEntry adds an entry after the current last position of its form.
func (r *ObservationRepository) AppendEntry(ctx context.Context, entry *models.ObservationEntry) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return appendEntry(ctx, tx, entry, time.Now().UTC())
	})
}

// UpdateEntry persists the editable entry fields.
func (r *ObservationRepository) UpdateEntry(ctx context.Context, entry *models.ObservationEntry) error {
	res, err := r.db.NamedExecContext(ctx, updateEntryQuery, entry)
	if err != nil {
		return fmt.Errorf("update observation entry: %w", err)
	}
	return expectAffected(res, "update observation entry")
}

// DeleteEntry removes a single entry.
func (r *ObservationRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM observation_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete observation entry: %w", err)
	}
	return expectAffected(res, "delete observation entry")
}

// SaveSheet updates existing entries and appends new ones atomically.
func (r *ObservationRepository) SaveSheet(ctx context.Context, updates []models.ObservationEntry, inserts []*models.ObservationEntry) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range updates {
			res, err := tx.NamedExecContext(ctx, updateEntryQuery, &updates[i])
			if err != nil {
				return fmt.Errorf("update observation entry: %w", err)
			}
			if err := expectAffected(res, "update observation entry"); err != nil {
				return err
			}
		}
		for _, entry := range inserts {
			if err := appendEntry(ctx, tx, entry, now); err != nil {
				return err
			}
		}
		return nil
	})
}

const updateEntryQuery = `UPDATE observation_entries SET time_label = :time_label, description = :description, comment = :comment WHERE id = :id`

func appendEntry(ctx context.Context, tx *sqlx.Tx, entry *models.ObservationEntry, now time.Time) error {
	const next = `SELECT COALESCE(MAX(position), -1) + 1 FROM observation_entries WHERE form_id = $1`
	if err := tx.GetContext(ctx, &entry.Position, next, entry.FormID); err != nil {
		return fmt.Errorf("next entry position: %w", err)
	}
	return insertEntry(ctx, tx, entry, now)
}

func insertEntry(ctx context.Context, tx *sqlx.Tx, entry *models.ObservationEntry, now time.Time) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = now
	const query = `INSERT INTO observation_entries (` + entryColumns + `)
VALUES (:id, :form_id, :time_label, :description, :comment, :position, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create observation entry: %w", err)
	}
	return nil
}

// expectAffected turns a zero-row write into sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
