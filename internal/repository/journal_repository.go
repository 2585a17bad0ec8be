package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

const journalColumns = `id, author_id, body, mood, effort, shared_with_supervisor, entry_date, semester_id, created_at, updated_at`

// JournalRepository persists journal entries.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository constructs the repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// List returns an author's entries, latest entry date first.
func (r *JournalRepository) List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error) {
	conds := []string{"author_id = $1"}
	args := []interface{}{authorID}
	if filter.SemesterID != "" {
		args = append(args, filter.SemesterID)
		conds = append(conds, fmt.Sprintf("semester_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("entry_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("entry_date < $%d", len(args)))
	}
	query := fmt.Sprintf("SELECT %s FROM journal_entries WHERE %s ORDER BY entry_date DESC, created_at DESC",
		journalColumns, strings.Join(conds, " AND "))

	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

// GetByID fetches an entry regardless of author.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	if err := r.db.GetContext(ctx, &entry, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return &entry, nil
}

// Create inserts a new entry with generated id and timestamps.
func (r *JournalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const query = `INSERT INTO journal_entries (` + journalColumns + `)
VALUES (:id, :author_id, :body, :mood, :effort, :shared_with_supervisor, :entry_date, :semester_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create journal entry: %w", err)
	}
	return nil
}

// Update persists the editable fields.
func (r *JournalRepository) Update(ctx context.Context, entry *models.JournalEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE journal_entries SET body = :body, mood = :mood, effort = :effort,
shared_with_supervisor = :shared_with_supervisor, entry_date = :entry_date, semester_id = :semester_id, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update journal entry: %w", err)
	}
	return expectAffected(res, "update journal entry")
}

// Delete removes an entry.
func (r *JournalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return expectAffected(res, "delete journal entry")
}
