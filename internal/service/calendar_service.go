package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/pkg/calendar"
)

const journalEventTitle = "Journal Eintrag"

type formLister interface {
	ListForms(ctx context.Context, authorID, semesterID string) ([]models.ObservationForm, error)
}

type journalLister interface {
	List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error)
}

type eventCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CalendarConfig tunes the month view.
type CalendarConfig struct {
	WeekStart   time.Weekday
	Location    *time.Location
	InlineLimit int
	CacheTTL    time.Duration
}

// CalendarService projects observation forms and journal entries onto a month grid.
type CalendarService struct {
	forms    formLister
	journals journalLister
	cache    eventCache
	logger   *zap.Logger
	cfg      CalendarConfig
	now      func() time.Time
}

// NewCalendarService constructs the service. cache may be nil.
func NewCalendarService(forms formLister, journals journalLister, cache eventCache, logger *zap.Logger, cfg CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CalendarService{forms: forms, journals: journals, cache: cache, logger: logger, cfg: cfg, now: time.Now}
}

func eventsCacheKey(authorID string) string {
	return "calendar:events:" + authorID
}

// Events returns every dated record of the author as calendar events,
// observations first, each group in store order.
func (s *CalendarService) Events(ctx context.Context, authorID string) ([]calendar.Event, error) {
	return remember(ctx, s.cache, eventsCacheKey(authorID), s.cfg.CacheTTL, func(ctx context.Context) ([]calendar.Event, error) {
		forms, err := s.forms.ListForms(ctx, authorID, "")
		if err != nil {
			return nil, internalError(err, "failed to load observation forms")
		}
		entries, err := s.journals.List(ctx, authorID, models.JournalFilter{})
		if err != nil {
			return nil, internalError(err, "failed to load journal entries")
		}

		events := make([]calendar.Event, 0, len(forms)+len(entries))
		for _, f := range forms {
			events = append(events, ObservationEvent(f))
		}
		for _, e := range entries {
			events = append(events, JournalEvent(e))
		}
		return events, nil
	})
}

// Month builds the view for the requested month, applying an optional navigation step.
// An empty month selects the current one.
func (s *CalendarService) Month(ctx context.Context, authorID string, query models.CalendarQuery) (*calendar.Month, error) {
	ym := calendar.Of(s.now().In(s.cfg.Location))
	if m := strings.TrimSpace(query.Month); m != "" {
		parsed, err := calendar.ParseYearMonth(m)
		if err != nil {
			return nil, validationError(err, "month must be formatted as YYYY-MM")
		}
		ym = parsed
	}
	if d := strings.TrimSpace(query.Direction); d != "" {
		dir, err := calendar.ParseDirection(d)
		if err != nil {
			return nil, validationError(err, "direction must be prev or next")
		}
		ym = calendar.Navigate(ym, dir)
	}

	events, err := s.Events(ctx, authorID)
	if err != nil {
		return nil, err
	}
	month := calendar.BuildMonth(ym, events, calendar.Options{
		WeekStart:   s.cfg.WeekStart,
		Location:    s.cfg.Location,
		InlineLimit: s.cfg.InlineLimit,
	})
	return &month, nil
}

// Invalidate drops the author's cached events after a write.
func (s *CalendarService) Invalidate(ctx context.Context, authorID string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventsCacheKey(authorID)); err != nil {
		s.logger.Sugar().Warnw("calendar cache invalidation failed", "author_id", authorID, "error", err)
	}
}

// ObservationEvent projects a form onto the calendar at its creation time.
func ObservationEvent(f models.ObservationForm) calendar.Event {
	return calendar.Event{
		ID:         f.ID,
		Kind:       calendar.KindObservation,
		Title:      fmt.Sprintf("%s - %s", f.School, f.Grade),
		Date:       f.CreatedAt,
		TargetLink: "/observations/" + f.ID,
	}
}

// JournalEvent projects a journal entry onto the calendar at its entry date.
func JournalEvent(e models.JournalEntry) calendar.Event {
	return calendar.Event{
		ID:         e.ID,
		Kind:       calendar.KindJournal,
		Title:      journalEventTitle,
		Date:       e.EntryDate,
		TargetLink: "/journal/" + e.ID,
	}
}
