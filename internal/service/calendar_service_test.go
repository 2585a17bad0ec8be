package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/pkg/calendar"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

type cacheRepoStub struct {
	items   map[string]interface{}
	deleted []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{items: map[string]interface{}{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	events, ok := v.([]calendar.Event)
	if !ok {
		return errors.New("unexpected cache type")
	}
	*(dest.(*[]calendar.Event)) = events
	return nil
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.items[key] = value
	return nil
}

func (c *cacheRepoStub) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.items, k)
	}
	c.deleted = append(c.deleted, keys...)
	return nil
}

func seededCalendarStores() (*observationStoreStub, *journalStoreStub) {
	forms := newObservationStoreStub()
	forms.forms["form-1"] = &models.ObservationForm{ID: "form-1", School: "Goethe", Grade: "7b", AuthorID: "user-1",
		CreatedAt: time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)}
	forms.forms["form-2"] = &models.ObservationForm{ID: "form-2", School: "Schiller", Grade: "9a", AuthorID: "user-1",
		CreatedAt: time.Date(2025, 2, 14, 13, 0, 0, 0, time.UTC)}
	journals := newJournalStoreStub()
	journals.entries["j-1"] = &models.JournalEntry{ID: "j-1", AuthorID: "user-1", EntryDate: time.Date(2025, 2, 14, 20, 0, 0, 0, time.UTC)}
	journals.entries["j-2"] = &models.JournalEntry{ID: "j-2", AuthorID: "user-1", EntryDate: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	journals.order = []string{"j-1", "j-2"}
	return forms, journals
}

func newCalendarServiceForTest(cache eventCache) (*CalendarService, *observationStoreStub, *journalStoreStub) {
	forms, journals := seededCalendarStores()
	svc := NewCalendarService(forms, journals, cache, zap.NewNop(), CalendarConfig{WeekStart: time.Sunday})
	svc.now = func() time.Time { return time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC) }
	return svc, forms, journals
}

func TestCalendarServiceEventsProjection(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil)

	events, err := svc.Events(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, calendar.Event{ID: "form-1", Kind: calendar.KindObservation, Title: "Goethe - 7b",
		Date: time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC), TargetLink: "/observations/form-1"}, events[0])
	assert.Equal(t, "Journal Eintrag", events[2].Title)
	assert.Equal(t, "/journal/j-1", events[2].TargetLink)
}

func TestCalendarServiceMonthDefaultsToCurrent(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil)

	month, err := svc.Month(context.Background(), "user-1", models.CalendarQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2025-02", month.Month)
	assert.Equal(t, "2025-01", month.Prev)
	assert.Equal(t, "2025-03", month.Next)

	var day calendar.Day
	for _, d := range month.Days {
		if d.Date == "2025-02-14" {
			day = d
		}
	}
	require.Len(t, day.Events, 3)
	assert.Len(t, day.Inline, 2)
	assert.Equal(t, 1, day.Overflow)
	assert.Equal(t, "form-1", day.Inline[0].ID)
}

func TestCalendarServiceMonthNavigation(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil)

	month, err := svc.Month(context.Background(), "user-1", models.CalendarQuery{Month: "2024-12", Direction: "next"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01", month.Month)

	_, err = svc.Month(context.Background(), "user-1", models.CalendarQuery{Month: "2025-13"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.Month(context.Background(), "user-1", models.CalendarQuery{Direction: "sideways"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCalendarServiceCachesAndInvalidates(t *testing.T) {
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc, forms, _ := newCalendarServiceForTest(cache)
	ctx := context.Background()

	_, err := svc.Events(ctx, "user-1")
	require.NoError(t, err)
	calls := forms.calls
	_, err = svc.Events(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, calls, forms.calls)

	svc.Invalidate(ctx, "user-1")
	assert.Equal(t, []string{"calendar:events:user-1"}, repo.deleted)
	_, err = svc.Events(ctx, "user-1")
	require.NoError(t, err)
	assert.Greater(t, forms.calls, calls)
}

func TestCalendarServiceStoreError(t *testing.T) {
	svc, _, journals := newCalendarServiceForTest(nil)
	journals.listErr = errors.New("boom")

	_, err := svc.Month(context.Background(), "user-1", models.CalendarQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
