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

type observationService interface {
	List(ctx context.Context, authorID, semesterID string) ([]models.ObservationForm, error)
	Get(ctx context.Context, id, authorID string) (*models.ObservationFormDetail, error)
	Submit(ctx context.Context, authorID string, sub models.ObservationSubmission) (*models.ObservationFormDetail, error)
	Update(ctx context.Context, id, authorID string, input models.ObservationFormInput) (*models.ObservationForm, error)
	Delete(ctx context.Context, id, authorID string) error
	AddEntry(ctx context.Context, formID, authorID string, input models.ObservationEntryInput) (*models.ObservationEntry, error)
	UpdateEntry(ctx context.Context, entryID, authorID string, input models.ObservationEntryInput) (*models.ObservationEntry, error)
	DeleteEntry(ctx context.Context, entryID, authorID string) error
	SaveSheet(ctx context.Context, formID, authorID string, rows []models.EntryRow) (*models.SheetSaveResult, error)
}

type observationDocuments interface {
	ObservationPDF(ctx context.Context, id, authorID string) (*export.Document, error)
	ObservationEntries(ctx context.Context, id, authorID, format string) (*service.ListExport, error)
}

// ObservationHandler exposes observation form endpoints.
type ObservationHandler struct {
	observations observationService
	documents    observationDocuments
}

// NewObservationHandler constructs ObservationHandler.
func NewObservationHandler(observations observationService, documents observationDocuments) *ObservationHandler {
	return &ObservationHandler{observations: observations, documents: documents}
}

// SheetRequest carries the edited rows of an observation table.
type SheetRequest struct {
	Rows []models.EntryRow `json:"rows"`
}

// List godoc
// @Summary List own observation forms
// @Tags Observations
// @Produce json
// @Param semesterId query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Router /observations [get]
func (h *ObservationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	forms, err := h.observations.List(c.Request.Context(), userID, pickQuery(c, "semester_id", "semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(forms))
	response.JSON(c, http.StatusOK, forms, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get an observation form with its entries
// @Tags Observations
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /observations/{id} [get]
func (h *ObservationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	detail, err := h.observations.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Submit a new observation form with its initial entries
// @Tags Observations
// @Accept json
// @Produce json
// @Param payload body models.ObservationSubmission true "Form and entries"
// @Success 201 {object} response.Envelope
// @Router /observations [post]
func (h *ObservationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ObservationSubmission
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.observations.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update an observation form
// @Tags Observations
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param payload body models.ObservationFormInput true "Form fields"
// @Success 200 {object} response.Envelope
// @Router /observations/{id} [put]
func (h *ObservationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ObservationFormInput
	if !bindJSON(c, &req) {
		return
	}
	form, err := h.observations.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form)
}

// Delete godoc
// @Summary Delete an observation form and its entries
// @Tags Observations
// @Param id path string true "Form ID"
// @Success 204
// @Router /observations/{id} [delete]
func (h *ObservationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.observations.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddEntry godoc
// @Summary Append an entry to an observation form
// @Tags Observations
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param payload body models.ObservationEntryInput true "Entry fields"
// @Success 201 {object} response.Envelope
// @Router /observations/{id}/entries [post]
func (h *ObservationHandler) AddEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ObservationEntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.observations.AddEntry(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateEntry godoc
// @Summary Update an observation entry
// @Tags Observations
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.ObservationEntryInput true "Entry fields"
// @Success 200 {object} response.Envelope
// @Router /entries/{id} [put]
func (h *ObservationHandler) UpdateEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ObservationEntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.observations.UpdateEntry(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Delete an observation entry
// @Tags Observations
// @Param id path string true "Entry ID"
// @Success 204
// @Router /entries/{id} [delete]
func (h *ObservationHandler) DeleteEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.observations.DeleteEntry(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SaveSheet godoc
// @Summary Save the edited entry table of a form
// @Description Persisted rows are updated, filled draft rows are inserted and returned as promotions, empty drafts are skipped.
// @Tags Observations
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param payload body SheetRequest true "Rows"
// @Success 200 {object} response.Envelope
// @Router /observations/{id}/sheet [put]
func (h *ObservationHandler) SaveSheet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req SheetRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.observations.SaveSheet(c.Request.Context(), c.Param("id"), userID, req.Rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// PDF godoc
// @Summary Download an observation form as PDF
// @Tags Observations
// @Produce application/pdf
// @Param id path string true "Form ID"
// @Success 200 {file} binary
// @Router /observations/{id}/pdf [get]
func (h *ObservationHandler) PDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, err := h.documents.ObservationPDF(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}

// Export godoc
// @Summary Export the entries of an observation form as a table
// @Tags Observations
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param id path string true "Form ID"
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} binary
// @Router /observations/{id}/export [get]
func (h *ObservationHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	result, err := h.documents.ObservationEntries(c.Request.Context(), c.Param("id"), userID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

func sendDocument(c *gin.Context, doc *export.Document) {
	data, err := doc.Bytes()
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.IsDegraded() {
		c.Header("X-Document-Degraded", "true")
	}
	response.Attachment(c, doc.Filename, export.ContentTypePDF, data)
}
