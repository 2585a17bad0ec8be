package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
)

type observationReader interface {
	Get(ctx context.Context, id, authorID string) (*models.ObservationFormDetail, error)
}

type journalReader interface {
	Get(ctx context.Context, id, authorID string) (*models.JournalEntry, error)
	List(ctx context.Context, authorID string, filter models.JournalFilter) ([]models.JournalEntry, error)
}

// ListExport is a rendered tabular export.
type ListExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentService renders stored records into downloadable documents.
type DocumentService struct {
	observations observationReader
	journals     journalReader
	renderer     *export.DocumentRenderer
	metrics      *MetricsService
	logger       *zap.Logger
	locale       string
}

// NewDocumentService constructs the service.
func NewDocumentService(observations observationReader, journals journalReader, renderer *export.DocumentRenderer, metrics *MetricsService, logger *zap.Logger, locale string) *DocumentService {
	if renderer == nil {
		renderer = export.NewDocumentRenderer(export.RendererConfig{Labels: export.LabelsFor(locale)})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{observations: observations, journals: journals, renderer: renderer, metrics: metrics, logger: logger, locale: locale}
}

// ObservationPDF renders an observation form owned by authorID.
func (s *DocumentService) ObservationPDF(ctx context.Context, id, authorID string) (*export.Document, error) {
	detail, err := s.observations.Get(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	return s.observationDocument(detail)
}

// JournalPDF renders a journal entry owned by authorID.
func (s *DocumentService) JournalPDF(ctx context.Context, id, authorID string) (*export.Document, error) {
	entry, err := s.journals.Get(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	return s.journalDocument(entry)
}

// Render produces the document of one record of the given kind.
func (s *DocumentService) Render(ctx context.Context, kind models.ExportKind, id, authorID string) (*export.Document, error) {
	switch kind {
	case models.ExportKindObservation:
		return s.ObservationPDF(ctx, id, authorID)
	case models.ExportKindJournal:
		return s.JournalPDF(ctx, id, authorID)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export kind")
	}
}

func (s *DocumentService) observationDocument(detail *models.ObservationFormDetail) (*export.Document, error) {
	sheet := export.ObservationSheet{
		School:          detail.School,
		Grade:           detail.Grade,
		DurationMinutes: detail.DurationMinutes,
		ClassComment:    deref(detail.ClassComment),
		CreatedAt:       detail.CreatedAt,
	}
	rows := make([]export.ObservationRow, len(detail.Entries))
	for i, e := range detail.Entries {
		rows[i] = export.ObservationRow{TimeLabel: e.TimeLabel, Description: e.Description, Comment: e.Comment}
	}
	doc, err := s.renderer.Observation(sheet, rows)
	if err != nil {
		return nil, internalError(err, "failed to render observation document")
	}
	s.observe(string(models.ExportKindObservation), detail.ID, doc)
	return doc, nil
}

func (s *DocumentService) journalDocument(entry *models.JournalEntry) (*export.Document, error) {
	doc, err := s.renderer.Journal(export.JournalPage{
		Body:      entry.Body,
		Mood:      entry.Mood,
		Effort:    entry.Effort,
		Shared:    entry.SharedWithSupervisor,
		EntryDate: entry.EntryDate,
	})
	if err != nil {
		return nil, internalError(err, "failed to render journal document")
	}
	s.observe(string(models.ExportKindJournal), entry.ID, doc)
	return doc, nil
}

func (s *DocumentService) observe(kind, id string, doc *export.Document) {
	s.metrics.ObserveDocument(kind, doc.PageCount(), doc.IsDegraded())
	if doc.IsDegraded() {
		s.logger.Sugar().Warnw("document rendered with substitutions", "kind", kind, "id", id, "fields", doc.Degraded)
	}
}

// JournalList exports the author's journal entries as a table.
func (s *DocumentService) JournalList(ctx context.Context, authorID, format string, filter models.JournalFilter) (*ListExport, error) {
	exporter, err := export.ExporterFor(format, s.locale, time.Time{})
	if err != nil {
		return nil, validationError(err, "format must be csv, xlsx or pdf")
	}
	entries, err := s.journals.List(ctx, authorID, filter)
	if err != nil {
		return nil, err
	}

	l := s.renderer.Labels()
	data := export.Dataset{
		Title:   l.JournalTitle,
		Headers: []string{l.EntryDate, l.Mood, l.Effort, l.Shared, strings.TrimSuffix(l.Content, ":")},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, []string{
			s.renderer.FormatDate(e.EntryDate),
			l.MoodLabel(e.Mood),
			l.EffortLabel(e.Effort),
			l.YesNo(e.SharedWithSupervisor),
			e.Body,
		})
	}

	payload, err := exporter.Render(data)
	if err != nil {
		return nil, internalError(err, "failed to render journal export")
	}
	return &ListExport{
		Filename:    l.JournalFilePrefix + "." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Data:        payload,
	}, nil
}

// ObservationEntries exports the entries of one observation form as a table.
func (s *DocumentService) ObservationEntries(ctx context.Context, id, authorID, format string) (*ListExport, error) {
	exporter, err := export.ExporterFor(format, s.locale, time.Time{})
	if err != nil {
		return nil, validationError(err, "format must be csv, xlsx or pdf")
	}
	detail, err := s.observations.Get(ctx, id, authorID)
	if err != nil {
		return nil, err
	}

	l := s.renderer.Labels()
	data := export.Dataset{
		Title:   l.ObservationTitle,
		Headers: []string{l.ColumnTime, l.ColumnDescription, l.ColumnComment},
		Rows:    make([][]string, 0, len(detail.Entries)),
	}
	for _, e := range detail.Entries {
		data.Rows = append(data.Rows, []string{e.TimeLabel, e.Description, e.Comment})
	}

	payload, err := exporter.Render(data)
	if err != nil {
		return nil, internalError(err, "failed to render observation export")
	}
	return &ListExport{
		Filename:    s.renderer.ObservationTableFilename(detail.School, detail.Grade, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        payload,
	}, nil
}
