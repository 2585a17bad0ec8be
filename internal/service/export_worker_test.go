package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
)

func TestExportWorkerRendersEachRecord(t *testing.T) {
	f := newExportFixture(t)
	docs := newDocumentFixture()
	ctx := context.Background()

	first, err := docs.journals.Create(ctx, "user-1", models.JournalEntryInput{Body: "eins", Mood: 3, Effort: 3})
	require.NoError(t, err)
	foreign, err := docs.journals.Create(ctx, "user-2", models.JournalEntryInput{Body: "fremd", Mood: 3, Effort: 3})
	require.NoError(t, err)

	job, err := f.svc.CreateJob(ctx, "user-1", models.Selection{Kind: models.ExportKindJournal, IDs: []string{uuid.NewString()}})
	require.NoError(t, err)
	f.repo.jobs[job.ID].RecordIDs = []string{first.ID, foreign.ID, "missing"}

	worker := NewExportWorker(f.repo, docs.svc, f.storage, f.metrics, time.Millisecond, zap.NewNop())
	require.NoError(t, worker.Handle(ctx, f.queue.tasks[0]))

	stored := f.repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.Len(t, stored.Results, 3)
	assert.Equal(t, first.ID, stored.Results[0].RecordID)
	assert.Empty(t, stored.Results[0].Error)
	assert.Equal(t, 1, stored.Results[0].Pages)
	assert.NotEmpty(t, stored.Results[1].Error)
	assert.NotEmpty(t, stored.Results[2].Error)

	file, err := f.storage.Open(stored.Results[0].Path)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	// a finished job is not processed twice
	updates := f.repo.updates
	require.NoError(t, worker.Handle(ctx, f.queue.tasks[0]))
	assert.Equal(t, updates, f.repo.updates)
}

func TestExportWorkerFailsWhenNothingRenders(t *testing.T) {
	f := newExportFixture(t)
	docs := newDocumentFixture()

	job, err := f.svc.CreateJob(context.Background(), "user-1", models.Selection{Kind: models.ExportKindObservation, IDs: []string{uuid.NewString()}})
	require.NoError(t, err)

	worker := NewExportWorker(f.repo, docs.svc, f.storage, nil, 0, nil)
	require.NoError(t, worker.Handle(context.Background(), f.queue.tasks[0]))
	stored := f.repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "no document could be rendered", *stored.ErrorMessage)
}

func TestExportWorkerStopsOnCancel(t *testing.T) {
	f := newExportFixture(t)
	docs := newDocumentFixture()
	ctx, cancel := context.WithCancel(context.Background())

	entry, err := docs.journals.Create(ctx, "user-1", models.JournalEntryInput{Mood: 3, Effort: 3})
	require.NoError(t, err)
	job, err := f.svc.CreateJob(ctx, "user-1", models.Selection{Kind: models.ExportKindJournal, IDs: []string{uuid.NewString()}})
	require.NoError(t, err)
	f.repo.jobs[job.ID].RecordIDs = []string{entry.ID, entry.ID}

	worker := NewExportWorker(f.repo, docs.svc, f.storage, nil, time.Hour, zap.NewNop())
	cancel()
	err = worker.Handle(ctx, f.queue.tasks[0])
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.repo.jobs[job.ID].Results, 1)
}
