package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

type observationStore interface {
	ListForms(ctx context.Context, authorID, semesterID string) ([]models.ObservationForm, error)
	GetForm(ctx context.Context, id string) (*models.ObservationForm, error)
	CreateForm(ctx context.Context, form *models.ObservationForm, entries []*models.ObservationEntry) error
	UpdateForm(ctx context.Context, form *models.ObservationForm) error
	DeleteForm(ctx context.Context, id string) error
	ListEntries(ctx context.Context, formID string) ([]models.ObservationEntry, error)
	GetEntry(ctx context.Context, id string) (*models.ObservationEntry, error)
	AppendEntry(ctx context.Context, entry *models.ObservationEntry) error
	UpdateEntry(ctx context.Context, entry *models.ObservationEntry) error
	DeleteEntry(ctx context.Context, id string) error
	SaveSheet(ctx context.Context, updates []models.ObservationEntry, inserts []*models.ObservationEntry) error
}

type semesterResolver interface {
	ActiveSemester(ctx context.Context, userID string) *string
}

// calendarInvalidator drops cached calendar events after a write.
type calendarInvalidator interface {
	Invalidate(ctx context.Context, authorID string)
}

// ObservationService implements observation form and entry operations with ownership checks.
type ObservationService struct {
	repo      observationStore
	semesters semesterResolver
	calendar  calendarInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewObservationService constructs an ObservationService.
func NewObservationService(repo observationStore, semesters semesterResolver, calendar calendarInvalidator, validate *validator.Validate, logger *zap.Logger) *ObservationService {
	if validate == nil {
		validate = NewValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObservationService{repo: repo, semesters: semesters, calendar: calendar, validator: validate, logger: logger}
}

// List returns the caller's forms, optionally narrowed to a semester.
func (s *ObservationService) List(ctx context.Context, authorID, semesterID string) ([]models.ObservationForm, error) {
	forms, err := s.repo.ListForms(ctx, authorID, strings.TrimSpace(semesterID))
	if err != nil {
		return nil, internalError(err, "failed to list observation forms")
	}
	if forms == nil {
		forms = []models.ObservationForm{}
	}
	return forms, nil
}

// Get returns a form with its entries in insertion order.
func (s *ObservationService) Get(ctx context.Context, id, authorID string) (*models.ObservationFormDetail, error) {
	form, err := s.ownedForm(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, form.ID)
	if err != nil {
		return nil, internalError(err, "failed to load observation entries")
	}
	if entries == nil {
		entries = []models.ObservationEntry{}
	}
	return &models.ObservationFormDetail{ObservationForm: *form, Entries: entries}, nil
}

// Create stores a new form with no entries.
func (s *ObservationService) Create(ctx context.Context, authorID string, input models.ObservationFormInput) (*models.ObservationForm, error) {
	detail, err := s.Submit(ctx, authorID, models.ObservationSubmission{Form: input})
	if err != nil {
		return nil, err
	}
	return &detail.ObservationForm, nil
}

// Submit creates a form together with its initial entries in one store write.
func (s *ObservationService) Submit(ctx context.Context, authorID string, sub models.ObservationSubmission) (*models.ObservationFormDetail, error) {
	if err := s.validator.Struct(sub); err != nil {
		return nil, validationError(err, "invalid observation form")
	}
	form := &models.ObservationForm{AuthorID: authorID}
	applyFormInput(form, sub.Form)
	if form.SemesterID == nil && s.semesters != nil {
		form.SemesterID = s.semesters.ActiveSemester(ctx, authorID)
	}

	entries := make([]*models.ObservationEntry, 0, len(sub.Entries))
	for _, in := range sub.Entries {
		entry := &models.ObservationEntry{}
		applyEntryInput(entry, in)
		entries = append(entries, entry)
	}

	if err := s.repo.CreateForm(ctx, form, entries); err != nil {
		return nil, internalError(err, "failed to create observation form")
	}
	s.touch(ctx, authorID)
	s.logger.Sugar().Infow("observation form created", "form_id", form.ID, "author_id", authorID, "entries", len(entries))

	detail := &models.ObservationFormDetail{ObservationForm: *form, Entries: make([]models.ObservationEntry, len(entries))}
	for i, e := range entries {
		detail.Entries[i] = *e
	}
	return detail, nil
}

// Update replaces the editable fields of a form.
func (s *ObservationService) Update(ctx context.Context, id, authorID string, input models.ObservationFormInput) (*models.ObservationForm, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid observation form")
	}
	form, err := s.ownedForm(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	semester := form.SemesterID
	applyFormInput(form, input)
	if form.SemesterID == nil {
		form.SemesterID = semester
	}
	if err := s.repo.UpdateForm(ctx, form); err != nil {
		return nil, storeError(err, "observation form")
	}
	s.touch(ctx, authorID)
	return form, nil
}

// Delete removes a form and all of its entries.
func (s *ObservationService) Delete(ctx context.Context, id, authorID string) error {
	if _, err := s.ownedForm(ctx, id, authorID); err != nil {
		return err
	}
	if err := s.repo.DeleteForm(ctx, id); err != nil {
		return storeError(err, "observation form")
	}
	s.touch(ctx, authorID)
	s.logger.Sugar().Infow("observation form deleted", "form_id", id, "author_id", authorID)
	return nil
}

// AddEntry appends an entry to an owned form.
func (s *ObservationService) AddEntry(ctx context.Context, formID, authorID string, input models.ObservationEntryInput) (*models.ObservationEntry, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid observation entry")
	}
	if _, err := s.ownedForm(ctx, formID, authorID); err != nil {
		return nil, err
	}
	entry := &models.ObservationEntry{FormID: formID}
	applyEntryInput(entry, input)
	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return nil, internalError(err, "failed to add observation entry")
	}
	return entry, nil
}

// UpdateEntry edits an entry after validating ownership through its form.
func (s *ObservationService) UpdateEntry(ctx context.Context, entryID, authorID string, input models.ObservationEntryInput) (*models.ObservationEntry, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid observation entry")
	}
	entry, err := s.ownedEntry(ctx, entryID, authorID)
	if err != nil {
		return nil, err
	}
	applyEntryInput(entry, input)
	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		return nil, storeError(err, "observation entry")
	}
	return entry, nil
}

// DeleteEntry removes an entry after validating ownership through its form.
func (s *ObservationService) DeleteEntry(ctx context.Context, entryID, authorID string) error {
	if _, err := s.ownedEntry(ctx, entryID, authorID); err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
		return storeError(err, "observation entry")
	}
	return nil
}

// SaveSheet stores an edited table: persisted rows are updated, ready drafts
// are inserted and reported as promotions, empty drafts are skipped.
func (s *ObservationService) SaveSheet(ctx context.Context, formID, authorID string, rows []models.EntryRow) (*models.SheetSaveResult, error) {
	if err := s.checkRows(rows); err != nil {
		return nil, err
	}
	if _, err := s.ownedForm(ctx, formID, authorID); err != nil {
		return nil, err
	}
	existing, err := s.repo.ListEntries(ctx, formID)
	if err != nil {
		return nil, internalError(err, "failed to load observation entries")
	}
	known := make(map[string]models.ObservationEntry, len(existing))
	for _, e := range existing {
		known[e.ID] = e
	}

	result := &models.SheetSaveResult{Updated: []models.ObservationEntry{}, Promoted: []models.Promotion{}, Skipped: []string{}}
	var updates []models.ObservationEntry
	var inserts []*models.ObservationEntry
	var drafts []models.EntryRow

	for i, row := range rows {
		if row.IsDraft() {
			if !row.Ready() {
				result.Skipped = append(result.Skipped, row.LocalKey)
				continue
			}
			entry := &models.ObservationEntry{FormID: formID}
			applyEntryInput(entry, row.Fields)
			inserts = append(inserts, entry)
			drafts = append(drafts, row)
			continue
		}
		entry, ok := known[row.ID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("row %d: observation entry not found", i))
		}
		applyEntryInput(&entry, row.Fields)
		updates = append(updates, entry)
	}

	if len(updates) == 0 && len(inserts) == 0 {
		return result, nil
	}
	if err := s.repo.SaveSheet(ctx, updates, inserts); err != nil {
		return nil, storeError(err, "observation entry")
	}

	result.Updated = append(result.Updated, updates...)
	for i, draft := range drafts {
		_, promotion, err := draft.Promote(*inserts[i])
		if err != nil {
			return nil, internalError(err, "failed to promote draft row")
		}
		result.Promoted = append(result.Promoted, promotion)
	}
	s.logger.Sugar().Infow("observation sheet saved", "form_id", formID, "updated", len(updates), "promoted", len(inserts), "skipped", len(result.Skipped))
	return result, nil
}

// checkRows validates a sheet without touching the store.
func (s *ObservationService) checkRows(rows []models.EntryRow) error {
	seenKeys := make(map[string]struct{})
	seenIDs := make(map[string]struct{})
	for i, row := range rows {
		if err := row.Check(); err != nil {
			return validationError(err, fmt.Sprintf("row %d", i))
		}
		if row.IsDraft() {
			if _, dup := seenKeys[row.LocalKey]; dup {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row %d: duplicate draft key", i))
			}
			seenKeys[row.LocalKey] = struct{}{}
			if !row.Ready() {
				continue
			}
		} else {
			if _, dup := seenIDs[row.ID]; dup {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row %d: duplicate entry id", i))
			}
			seenIDs[row.ID] = struct{}{}
		}
		if err := s.validator.Struct(row.Fields); err != nil {
			return validationError(err, fmt.Sprintf("row %d", i))
		}
	}
	return nil
}

func (s *ObservationService) ownedForm(ctx context.Context, id, authorID string) (*models.ObservationForm, error) {
	form, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return nil, storeError(err, "observation form")
	}
	if err := ensureOwner(form.AuthorID, authorID); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *ObservationService) ownedEntry(ctx context.Context, entryID, authorID string) (*models.ObservationEntry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, storeError(err, "observation entry")
	}
	if _, err := s.ownedForm(ctx, entry.FormID, authorID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ObservationService) touch(ctx context.Context, authorID string) {
	if s.calendar != nil {
		s.calendar.Invalidate(ctx, authorID)
	}
}

func applyFormInput(form *models.ObservationForm, in models.ObservationFormInput) {
	form.School = strings.TrimSpace(in.School)
	form.Grade = strings.TrimSpace(in.Grade)
	form.DurationMinutes = in.DurationMinutes
	form.ClassComment = normalizeOptional(in.ClassComment)
	if sem := normalizeOptional(in.SemesterID); sem != nil {
		upper := strings.ToUpper(*sem)
		form.SemesterID = &upper
	} else {
		form.SemesterID = nil
	}
}

func applyEntryInput(entry *models.ObservationEntry, in models.ObservationEntryInput) {
	entry.TimeLabel = strings.TrimSpace(in.TimeLabel)
	entry.Description = strings.TrimSpace(in.Description)
	entry.Comment = strings.TrimSpace(in.Comment)
}
