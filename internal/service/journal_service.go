package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

type journalStore interface {
	List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error)
	GetByID(ctx context.Context, id string) (*models.JournalEntry, error)
	Create(ctx context.Context, entry *models.JournalEntry) error
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, id string) error
}

// JournalService implements journal entry operations with ownership checks.
type JournalService struct {
	repo      journalStore
	semesters semesterResolver
	calendar  calendarInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewJournalService constructs a JournalService.
func NewJournalService(repo journalStore, semesters semesterResolver, calendar calendarInvalidator, validate *validator.Validate, logger *zap.Logger) *JournalService {
	if validate == nil {
		validate = NewValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{repo: repo, semesters: semesters, calendar: calendar, validator: validate, logger: logger, now: time.Now}
}

// List returns the caller's entries.
func (s *JournalService) List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error) {
	filter.SemesterID = strings.TrimSpace(filter.SemesterID)
	entries, err := s.repo.List(ctx, authorID, filter)
	if err != nil {
		return nil, internalError(err, "failed to list journal entries")
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

// Get returns an owned entry.
func (s *JournalService) Get(ctx context.Context, id, authorID string) (*models.JournalEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "journal entry")
	}
	if err := ensureOwner(entry.AuthorID, authorID); err != nil {
		return nil, err
	}
	return entry, nil
}

// Create stores a new entry, defaulting the date to now and the semester to the active one.
func (s *JournalService) Create(ctx context.Context, authorID string, input models.JournalEntryInput) (*models.JournalEntry, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid journal entry")
	}
	entry := &models.JournalEntry{AuthorID: authorID, EntryDate: s.now().UTC()}
	applyJournalInput(entry, input)
	if entry.SemesterID == nil && s.semesters != nil {
		entry.SemesterID = s.semesters.ActiveSemester(ctx, authorID)
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, internalError(err, "failed to create journal entry")
	}
	s.touch(ctx, authorID)
	s.logger.Sugar().Infow("journal entry created", "entry_id", entry.ID, "author_id", authorID)
	return entry, nil
}

// Update replaces the editable fields of an owned entry.
func (s *JournalService) Update(ctx context.Context, id, authorID string, input models.JournalEntryInput) (*models.JournalEntry, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid journal entry")
	}
	entry, err := s.Get(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	applyJournalInput(entry, input)
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, storeError(err, "journal entry")
	}
	s.touch(ctx, authorID)
	return entry, nil
}

// Delete removes an owned entry.
func (s *JournalService) Delete(ctx context.Context, id, authorID string) error {
	if _, err := s.Get(ctx, id, authorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "journal entry")
	}
	s.touch(ctx, authorID)
	s.logger.Sugar().Infow("journal entry deleted", "entry_id", id, "author_id", authorID)
	return nil
}

func (s *JournalService) touch(ctx context.Context, authorID string) {
	if s.calendar != nil {
		s.calendar.Invalidate(ctx, authorID)
	}
}

// applyJournalInput copies input fields; a missing date or semester keeps the current value.
func applyJournalInput(entry *models.JournalEntry, in models.JournalEntryInput) {
	entry.Body = strings.TrimSpace(in.Body)
	entry.Mood = in.Mood
	entry.Effort = in.Effort
	entry.SharedWithSupervisor = in.SharedWithSupervisor
	if in.EntryDate != nil && !in.EntryDate.IsZero() {
		entry.EntryDate = in.EntryDate.UTC()
	}
	if sem := normalizeOptional(in.SemesterID); sem != nil {
		upper := strings.ToUpper(*sem)
		entry.SemesterID = &upper
	}
}
