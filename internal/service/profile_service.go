package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

type profileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Ensure(ctx context.Context, id, email string) (*models.Profile, error)
	UpdateSemester(ctx context.Context, id, semesterID string) error
	UpdateName(ctx context.Context, id, name string) error
}

// ProfileService manages the per-user profile and semester selection.
type ProfileService struct {
	repo      profileStore
	semesters []string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileStore, semesters []string, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = NewValidator(semesters)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, semesters: semesters, validator: validate, logger: logger}
}

// Semesters lists the selectable semester codes.
func (s *ProfileService) Semesters() []string {
	return append([]string(nil), s.semesters...)
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "profile")
	}
	return profile, nil
}

// Ensure returns the caller's profile, creating it on first sign-in.
func (s *ProfileService) Ensure(ctx context.Context, userID, email string) (*models.Profile, error) {
	profile, err := s.repo.Ensure(ctx, userID, email)
	if err != nil {
		return nil, internalError(err, "failed to load profile")
	}
	return profile, nil
}

// ActiveSemester returns the semester new records default to, or nil.
func (s *ProfileService) ActiveSemester(ctx context.Context, userID string) *string {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Sugar().Debugw("no active semester", "user_id", userID, "error", err)
		return nil
	}
	return normalizeOptional(profile.SemesterID)
}

// UpdateSemester switches the active semester.
func (s *ProfileService) UpdateSemester(ctx context.Context, userID string, req models.UpdateSemesterRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid semester")
	}
	semester := strings.ToUpper(strings.TrimSpace(req.SemesterID))
	if err := s.repo.UpdateSemester(ctx, userID, semester); err != nil {
		return nil, storeError(err, "profile")
	}
	s.logger.Sugar().Infow("semester changed", "user_id", userID, "semester_id", semester)
	return s.Get(ctx, userID)
}

// UpdateName changes the display name.
func (s *ProfileService) UpdateName(ctx context.Context, userID string, req models.UpdateNameRequest) (*models.Profile, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid name")
	}
	if err := s.repo.UpdateName(ctx, userID, req.Name); err != nil {
		return nil, storeError(err, "profile")
	}
	return s.Get(ctx, userID)
}
