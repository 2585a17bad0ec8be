package handler

import (
	"context"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/internal/service"
	"github.com/noah-isme/practicum-journal-api/pkg/response"
)

type exportService interface {
	CreateJob(ctx context.Context, actorID string, sel models.Selection) (*models.ExportJob, error)
	GetStatus(ctx context.Context, id, actorID string) (*models.ExportJobStatus, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler manages batch export jobs and their signed downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Queue a batch PDF export of selected records
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body models.Selection true "Record selection"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.Selection
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"job_id": job.ID, "status": job.Status})
}

// Status godoc
// @Summary Poll a batch export job
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Download godoc
// @Summary Download an export result through a signed link
// @Tags Exports
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	size := int64(-1)
	if info, statErr := download.File.Stat(); statErr == nil {
		size = info.Size()
	}
	contentType := mime.TypeByExtension(path.Ext(download.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("X-Link-Expires", strconv.FormatInt(download.ExpiresAt.Unix(), 10))
	response.Stream(c, download.Filename, contentType, size, download.File)
}
