package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

type journalStoreStub struct {
	entries map[string]*models.JournalEntry
	order   []string
	calls   int
	listErr error
}

func newJournalStoreStub() *journalStoreStub {
	return &journalStoreStub{entries: map[string]*models.JournalEntry{}}
}

func (s *journalStoreStub) List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error) {
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.JournalEntry
	for _, id := range s.order {
		e, ok := s.entries[id]
		if ok && e.AuthorID == authorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *journalStoreStub) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	s.calls++
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("get journal entry: %w", sql.ErrNoRows)
	}
	cp := *e
	return &cp, nil
}

func (s *journalStoreStub) Create(ctx context.Context, entry *models.JournalEntry) error {
	s.calls++
	entry.ID = fmt.Sprintf("journal-%d", len(s.order)+1)
	cp := *entry
	s.entries[entry.ID] = &cp
	s.order = append(s.order, entry.ID)
	return nil
}

func (s *journalStoreStub) Update(ctx context.Context, entry *models.JournalEntry) error {
	s.calls++
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *journalStoreStub) Delete(ctx context.Context, id string) error {
	s.calls++
	delete(s.entries, id)
	return nil
}

func newJournalServiceForTest() (*JournalService, *journalStoreStub, *invalidatorStub) {
	store := newJournalStoreStub()
	inv := &invalidatorStub{}
	svc := NewJournalService(store, semesterStub{active: "SS2025"}, inv, NewValidator([]string{"WS2024", "SS2025"}), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 4, 2, 18, 30, 0, 0, time.UTC) }
	return svc, store, inv
}

func TestJournalServiceCreateDefaults(t *testing.T) {
	svc, _, inv := newJournalServiceForTest()

	entry, err := svc.Create(context.Background(), "user-1", models.JournalEntryInput{Body: "  Heute war gut.  ", Mood: 4, Effort: 3})
	require.NoError(t, err)
	assert.Equal(t, "Heute war gut.", entry.Body)
	assert.Equal(t, time.Date(2025, 4, 2, 18, 30, 0, 0, time.UTC), entry.EntryDate)
	require.NotNil(t, entry.SemesterID)
	assert.Equal(t, "SS2025", *entry.SemesterID)
	assert.Equal(t, []string{"user-1"}, inv.authors)
}

func TestJournalServiceCreateAllowsEmptyBody(t *testing.T) {
	svc, _, _ := newJournalServiceForTest()
	date := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	entry, err := svc.Create(context.Background(), "user-1", models.JournalEntryInput{Mood: 1, Effort: 5, EntryDate: &date})
	require.NoError(t, err)
	assert.Empty(t, entry.Body)
	assert.Equal(t, date, entry.EntryDate)
}

func TestJournalServiceRejectsOutOfRangeRatings(t *testing.T) {
	svc, store, _ := newJournalServiceForTest()

	for _, in := range []models.JournalEntryInput{{Mood: 0, Effort: 3}, {Mood: 6, Effort: 3}, {Mood: 3, Effort: 9}} {
		_, err := svc.Create(context.Background(), "user-1", in)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	}
	assert.Zero(t, store.calls)
}

func TestJournalServiceOwnership(t *testing.T) {
	svc, _, _ := newJournalServiceForTest()
	entry, err := svc.Create(context.Background(), "owner", models.JournalEntryInput{Mood: 3, Effort: 3})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), entry.ID, "other")
	assert.True(t, errors.Is(err, appErrors.ErrNotOwner))
	_, err = svc.Update(context.Background(), entry.ID, "other", models.JournalEntryInput{Mood: 2, Effort: 2})
	assert.True(t, errors.Is(err, appErrors.ErrNotOwner))
	assert.True(t, errors.Is(svc.Delete(context.Background(), entry.ID, "other"), appErrors.ErrNotOwner))

	_, err = svc.Get(context.Background(), "missing", "owner")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestJournalServiceUpdateKeepsDate(t *testing.T) {
	svc, _, _ := newJournalServiceForTest()
	entry, err := svc.Create(context.Background(), "user-1", models.JournalEntryInput{Mood: 3, Effort: 3})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), entry.ID, "user-1", models.JournalEntryInput{Body: "neu", Mood: 5, Effort: 1, SharedWithSupervisor: true})
	require.NoError(t, err)
	assert.Equal(t, entry.EntryDate, updated.EntryDate)
	assert.True(t, updated.SharedWithSupervisor)
	assert.Equal(t, 5, updated.Mood)
}

func TestJournalServiceListSurfacesStoreError(t *testing.T) {
	svc, store, _ := newJournalServiceForTest()
	store.listErr = errors.New("timeout")

	_, err := svc.List(context.Background(), "user-1", models.JournalFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	store.listErr = nil
	entries, err := svc.List(context.Background(), "user-1", models.JournalFilter{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
}
