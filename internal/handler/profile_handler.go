package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
	"github.com/noah-isme/practicum-journal-api/pkg/response"
)

type currentUserProvider interface {
	CurrentUser(ctx context.Context) (*models.CurrentUser, error)
}

type profileService interface {
	Semesters() []string
	UpdateSemester(ctx context.Context, userID string, req models.UpdateSemesterRequest) (*models.Profile, error)
	UpdateName(ctx context.Context, userID string, req models.UpdateNameRequest) (*models.Profile, error)
}

// ProfileHandler exposes the current session and its profile preferences.
type ProfileHandler struct {
	sessions currentUserProvider
	profiles profileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(sessions currentUserProvider, profiles profileService) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, profiles: profiles}
}

// Me godoc
// @Summary Current user with profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	user, err := h.sessions.CurrentUser(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// UpdateSemester godoc
// @Summary Select the active semester
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpdateSemesterRequest true "Semester"
// @Success 200 {object} response.Envelope
// @Router /me/semester [put]
func (h *ProfileHandler) UpdateSemester(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateSemesterRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.UpdateSemester(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UpdateName godoc
// @Summary Change the display name
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpdateNameRequest true "Name"
// @Success 200 {object} response.Envelope
// @Router /me/name [put]
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateNameRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.UpdateName(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Semesters godoc
// @Summary Configured semester identifiers
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *ProfileHandler) Semesters(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.profiles.Semesters())
}
