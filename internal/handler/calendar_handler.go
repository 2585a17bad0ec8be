package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/pkg/calendar"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
	"github.com/noah-isme/practicum-journal-api/pkg/response"
)

type calendarService interface {
	Month(ctx context.Context, authorID string, query models.CalendarQuery) (*calendar.Month, error)
}

// CalendarHandler serves the month grid.
type CalendarHandler struct {
	calendar calendarService
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(calendar calendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// Month godoc
// @Summary Month grid with observation and journal events
// @Tags Calendar
// @Produce json
// @Param month query string false "Anchor month (YYYY-MM), defaults to the current month"
// @Param direction query string false "prev or next"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query models.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid calendar query"))
		return
	}
	month, err := h.calendar.Month(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, month)
}
