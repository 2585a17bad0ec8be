package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

func TestProfileRepositoryEnsure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles (id, email, role, created_at, updated_at)")).
		WithArgs("user-1", "a@example.com", models.ProfileRoleStudent, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "semester_id", "created_at", "updated_at"}).
			AddRow("user-1", "a@example.com", nil, "student", "WS25", now, now))

	profile, err := repo.Ensure(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, profile.SemesterID)
	assert.Equal(t, "WS25", *profile.SemesterID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpdateSemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET semester_id = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("SS25", sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSemester(context.Background(), "user-1", "SS25"))
	require.NoError(t, mock.ExpectationsWereMet())
}
