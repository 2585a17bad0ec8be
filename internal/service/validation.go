package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

// NewValidator returns a validator aware of the configured semester codes.
// With no codes configured any non-empty value passes the semester rule.
func NewValidator(semesters []string) *validator.Validate {
	allowed := make(map[string]struct{}, len(semesters))
	for _, s := range semesters {
		allowed[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	v := validator.New()
	_ = v.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
		value := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		if value == "" {
			return false
		}
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[value]
		return ok
	})
	return v
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// storeError maps a repository failure onto the API taxonomy.
func storeError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return internalError(err, "failed to access "+what)
}

// ensureOwner rejects access to a record authored by someone else.
func ensureOwner(ownerID, actorID string) error {
	if ownerID == "" || ownerID != actorID {
		return appErrors.ErrNotOwner
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
