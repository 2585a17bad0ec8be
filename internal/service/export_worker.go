package service

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/internal/repository"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
	"github.com/noah-isme/practicum-journal-api/pkg/jobs"
)

type documentRenderer interface {
	Render(ctx context.Context, kind models.ExportKind, id, authorID string) (*export.Document, error)
}

// ExportWorker renders the records of a batch export one at a time.
type ExportWorker struct {
	repo      exportJobStore
	documents documentRenderer
	storage   fileStorage
	metrics   *MetricsService
	logger    *zap.Logger
	itemDelay time.Duration
}

// NewExportWorker constructs a worker. itemDelay is the pause between two documents of a job.
func NewExportWorker(repo exportJobStore, documents documentRenderer, storage fileStorage, metrics *MetricsService, itemDelay time.Duration, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, documents: documents, storage: storage, metrics: metrics, logger: logger, itemDelay: itemDelay}
}

// Handle processes a queued export. A failing record is noted in the results and
// does not stop the rest; only store failures are returned for retry.
func (w *ExportWorker) Handle(ctx context.Context, task ExportTask) error {
	job, err := w.repo.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	if job.Status == models.ExportStatusFinished || job.Status == models.ExportStatusFailed {
		return nil
	}
	authorID := task.Payload
	if authorID == "" {
		authorID = job.CreatedBy
	}

	processing := models.ExportStatusProcessing
	progress := 0
	results := make(models.ExportResults, 0, len(job.RecordIDs))
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
		Results:  &results,
	}); err != nil {
		return err
	}

	succeeded := 0
	for i, recordID := range job.RecordIDs {
		if i > 0 {
			if err := jobs.Sleep(ctx, w.itemDelay); err != nil {
				return err
			}
		}
		result := w.renderOne(ctx, job, authorID, recordID)
		if result.Error == "" {
			succeeded++
		}
		results = append(results, result)
		progress = (i + 1) * 100 / len(job.RecordIDs)
		if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Progress: &progress,
			Results:  &results,
		}); err != nil {
			return err
		}
	}

	status := models.ExportStatusFinished
	message := ""
	if succeeded == 0 {
		status = models.ExportStatusFailed
		message = "no document could be rendered"
	}
	progress = 100
	now := time.Now().UTC()
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		return err
	}
	w.metrics.ObserveExportJob(string(status))
	w.logger.Sugar().Infow("export job done", "job_id", job.ID, "status", status, "documents", succeeded, "records", len(job.RecordIDs))
	return nil
}

func (w *ExportWorker) renderOne(ctx context.Context, job *models.ExportJob, authorID, recordID string) models.ExportResult {
	result := models.ExportResult{RecordID: recordID}
	doc, err := w.documents.Render(ctx, job.Kind, recordID, authorID)
	if err != nil {
		w.logger.Sugar().Warnw("export item failed", "job_id", job.ID, "record_id", recordID, "error", err)
		result.Error = err.Error()
		return result
	}
	data, err := doc.Bytes()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	relPath, err := w.storage.Save(path.Join(job.ID, recordID, doc.Filename), data)
	if err != nil {
		w.logger.Sugar().Warnw("export item not stored", "job_id", job.ID, "record_id", recordID, "error", err)
		result.Error = "failed to store document"
		return result
	}
	result.Filename = doc.Filename
	result.Path = relPath
	result.Pages = doc.PageCount()
	result.Degraded = doc.IsDegraded()
	return result
}
