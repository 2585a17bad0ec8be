package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/middleware"
	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/internal/service"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
	"github.com/noah-isme/practicum-journal-api/pkg/response"
)

type journalService interface {
	List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error)
	Get(ctx context.Context, id, authorID string) (*models.JournalEntry, error)
	Create(ctx context.Context, authorID string, input models.JournalEntryInput) (*models.JournalEntry, error)
	Update(ctx context.Context, id, authorID string, input models.JournalEntryInput) (*models.JournalEntry, error)
	Delete(ctx context.Context, id, authorID string) error
}

type journalDocuments interface {
	JournalPDF(ctx context.Context, id, authorID string) (*export.Document, error)
	JournalList(ctx context.Context, authorID, format string, filter models.JournalFilter) (*service.ListExport, error)
}

// JournalHandler exposes reflective journal endpoints.
type JournalHandler struct {
	journals  journalService
	documents journalDocuments
}

// NewJournalHandler constructs JournalHandler.
func NewJournalHandler(journals journalService, documents journalDocuments) *JournalHandler {
	return &JournalHandler{journals: journals, documents: documents}
}

// List godoc
// @Summary List own journal entries, newest first
// @Tags Journal
// @Produce json
// @Param semesterId query string false "Semester filter"
// @Param from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param to query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *JournalHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter, ok := journalFilter(c)
	if !ok {
		return
	}
	entries, err := h.journals.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(entries))
	response.JSON(c, http.StatusOK, entries, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a journal entry
// @Tags Journal
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /journal/{id} [get]
func (h *JournalHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entry, err := h.journals.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Create godoc
// @Summary Create a journal entry
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body models.JournalEntryInput true "Entry fields"
// @Success 201 {object} response.Envelope
// @Router /journal [post]
func (h *JournalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.JournalEntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.journals.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update a journal entry
// @Tags Journal
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.JournalEntryInput true "Entry fields"
// @Success 200 {object} response.Envelope
// @Router /journal/{id} [put]
func (h *JournalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.JournalEntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.journals.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete a journal entry
// @Tags Journal
// @Param id path string true "Entry ID"
// @Success 204
// @Router /journal/{id} [delete]
func (h *JournalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.journals.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PDF godoc
// @Summary Download a journal entry as PDF
// @Tags Journal
// @Produce application/pdf
// @Param id path string true "Entry ID"
// @Success 200 {file} binary
// @Router /journal/{id}/pdf [get]
func (h *JournalHandler) PDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, err := h.documents.JournalPDF(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}

// Export godoc
// @Summary Export the filtered journal list as a table
// @Tags Journal
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param semesterId query string false "Semester filter"
// @Param from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param to query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /journal/export [get]
func (h *JournalHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter, ok := journalFilter(c)
	if !ok {
		return
	}
	result, err := h.documents.JournalList(c.Request.Context(), userID, c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

func journalFilter(c *gin.Context) (models.JournalFilter, bool) {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return models.JournalFilter{}, false
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return models.JournalFilter{}, false
	}
	return models.JournalFilter{
		SemesterID: pickQuery(c, "semester_id", "semesterId"),
		From:       from,
		To:         to,
	}, true
}
