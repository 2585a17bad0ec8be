package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

var journalRowColumns = []string{"id", "author_id", "body", "mood", "effort", "shared_with_supervisor", "entry_date", "semester_id", "created_at", "updated_at"}

func TestJournalRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM journal_entries WHERE author_id = $1 AND semester_id = $2 AND entry_date >= $3 AND entry_date < $4 ORDER BY entry_date DESC")).
		WithArgs("user-1", "SS25", from, to).
		WillReturnRows(sqlmock.NewRows(journalRowColumns).
			AddRow("j-1", "user-1", "Text", 4, 2, true, from, "SS25", now, now))

	entries, err := repo.List(context.Background(), "user-1", models.JournalFilter{SemesterID: "SS25", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].SharedWithSupervisor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepositoryCreateDefaultsEntryDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journal_entries")).
		WithArgs(sqlmock.AnyArg(), "user-1", "Heute", 3, 3, false, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.JournalEntry{AuthorID: "user-1", Body: "Heute", Mood: 3, Effort: 3}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.EntryDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journal_entries WHERE id = $1")).
		WithArgs("j-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "j-9")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
