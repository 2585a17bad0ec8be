package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/internal/repository"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
	"github.com/noah-isme/practicum-journal-api/pkg/jobs"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

// ExportTask is the queued unit of a batch export: Task.ID is the job id and
// the payload is the author the records are rendered for.
type ExportTask = jobs.Task[string]

type exportDispatcher interface {
	Enqueue(task ExportTask) error
	EnqueueWait(ctx context.Context, task ExportTask) error
}

// ExportConfig governs batch size, links and retention.
type ExportConfig struct {
	APIPrefix       string
	MaxBatch        int
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload is a resolved, opened export file.
type ExportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ExportService manages the batch export lifecycle: creation, status, downloads and retention.
type ExportService struct {
	repo      exportJobStore
	storage   fileStorage
	signer    tokenSigner
	queue     exportDispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs the service.
func NewExportService(repo exportJobStore, storage fileStorage, signer tokenSigner, queue exportDispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if validate == nil {
		validate = NewValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 50
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		repo:      repo,
		storage:   storage,
		signer:    signer,
		queue:     queue,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the dispatcher once the worker queue is built.
func (s *ExportService) SetQueue(queue exportDispatcher) {
	s.queue = queue
}

// CreateJob persists a batch export for the selected records and enqueues it.
func (s *ExportService) CreateJob(ctx context.Context, actorID string, sel models.Selection) (*models.ExportJob, error) {
	if err := s.validator.Struct(sel); err != nil {
		return nil, validationError(err, "invalid export selection")
	}
	sel = sel.Normalize()
	if len(sel.IDs) > s.cfg.MaxBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d records can be exported at once", s.cfg.MaxBatch))
	}

	job := &models.ExportJob{
		Kind:      sel.Kind,
		RecordIDs: sel.IDs,
		Status:    models.ExportStatusQueued,
		Results:   models.ExportResults{},
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, internalError(err, "failed to create export job")
	}
	if err := s.enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			s.fail(ctx, job.ID, "export queue full")
			return nil, appErrors.Wrap(err, appErrors.ErrBusy.Code, appErrors.ErrBusy.Status, "too many exports in progress, retry later")
		}
		s.fail(ctx, job.ID, "failed to enqueue job")
		return nil, internalError(err, "failed to enqueue export job")
	}
	s.logger.Sugar().Infow("export job queued", "job_id", job.ID, "kind", job.Kind, "records", len(job.RecordIDs))
	return job, nil
}

// GetStatus returns job progress and fresh signed links for every finished document.
func (s *ExportService) GetStatus(ctx context.Context, id, actorID string) (*models.ExportJobStatus, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "export job")
	}
	if err := ensureOwner(job.CreatedBy, actorID); err != nil {
		return nil, err
	}
	status := &models.ExportJobStatus{ExportJob: *job}
	for _, r := range job.Results {
		if r.Path == "" {
			continue
		}
		token, expiresAt, err := s.signer.Generate(job.ID, r.Path)
		if err != nil {
			return nil, internalError(err, "failed to sign download link")
		}
		status.Links = append(status.Links, models.ExportLink{
			RecordID:  r.RecordID,
			Filename:  r.Filename,
			URL:       s.cfg.APIPrefix + "/exports/download/" + token,
			ExpiresAt: expiresAt,
		})
	}
	return status, nil
}

// ResolveDownload validates a token and opens the stored document.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, storeError(err, "export job")
	}
	if !job.Results.Has(relPath) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match this export")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer available")
	}
	return &ExportDownload{File: file, Filename: path.Base(relPath), ExpiresAt: expiresAt}, nil
}

// recoverLimit caps how many pending jobs a restart replays.
const recoverLimit = 50

// RecoverPendingJobs replays queued and interrupted jobs after a restart.
// It waits for free queue slots, so callers run it off the startup path.
func (s *ExportService) RecoverPendingJobs(ctx context.Context) {
	if s.queue == nil {
		s.logger.Sugar().Warnw("export queue not configured, skipping recovery")
		return
	}
	pending, err := s.repo.ListQueued(ctx, recoverLimit)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for i := range pending {
		job := &pending[i]
		task := ExportTask{ID: job.ID, Kind: string(job.Kind), Payload: job.CreatedBy}
		if err := s.queue.EnqueueWait(ctx, task); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
			return
		}
	}
	if len(pending) > 0 {
		s.logger.Sugar().Infow("recovered export jobs", "count", len(pending))
	}
}

// MarkFailed records a job the queue gave up on.
func (s *ExportService) MarkFailed(task ExportTask, cause error) {
	s.logger.Sugar().Warnw("export job abandoned", "job_id", task.ID, "attempt", task.Attempt, "error", cause)
	s.fail(context.Background(), task.ID, cause.Error())
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup(ctx)
			}
		}
	}()
}

// Cleanup deletes documents and job rows that finished before the retention window.
func (s *ExportService) Cleanup(ctx context.Context) {
	const batch = 100
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		for _, job := range expired {
			for _, r := range job.Results {
				if r.Path == "" {
					continue
				}
				if err := s.storage.Delete(r.Path); err != nil {
					s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "path", r.Path, "error", err)
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Sugar().Warnw("cleanup job delete failed", "job_id", job.ID, "error", err)
				return
			}
		}
		if len(expired) < batch {
			break
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ExportService) enqueue(job *models.ExportJob) error {
	if s.queue == nil {
		return fmt.Errorf("export queue not configured")
	}
	return s.queue.Enqueue(ExportTask{ID: job.ID, Kind: string(job.Kind), Payload: job.CreatedBy})
}

func (s *ExportService) fail(ctx context.Context, id, message string) {
	status := models.ExportStatusFailed
	progress := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Sugar().Warnw("failed to mark export job failed", "job_id", id, "error", err)
		return
	}
	s.metrics.ObserveExportJob(string(status))
}
