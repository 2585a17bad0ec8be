package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ExportKind names the record type rendered by an export job.
type ExportKind string

const (
	ExportKindObservation ExportKind = "observation"
	ExportKindJournal     ExportKind = "journal"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// Selection is the explicit set of records a client picked for a batch export.
type Selection struct {
	Kind ExportKind `json:"kind" validate:"required,oneof=observation journal"`
	IDs  []string   `json:"ids" validate:"required,min=1,dive,uuid"`
}

// Normalize drops duplicate ids while keeping the first occurrence order.
func (s Selection) Normalize() Selection {
	seen := make(map[string]struct{}, len(s.IDs))
	ids := make([]string, 0, len(s.IDs))
	for _, id := range s.IDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return Selection{Kind: s.Kind, IDs: ids}
}

// ExportJob is persisted batch export metadata.
type ExportJob struct {
	ID           string         `db:"id" json:"id"`
	Kind         ExportKind     `db:"kind" json:"kind"`
	RecordIDs    pq.StringArray `db:"record_ids" json:"record_ids"`
	Status       ExportStatus   `db:"status" json:"status"`
	Progress     int            `db:"progress" json:"progress"`
	Results      ExportResults  `db:"results" json:"results"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string        `db:"error_message" json:"error_message,omitempty"`
}

// ExportResult describes one rendered document of a batch.
type ExportResult struct {
	RecordID string `json:"record_id"`
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ExportResults is stored as JSONB.
type ExportResults []ExportResult

// Value marshals results to JSON for persistence.
func (r ExportResults) Value() (driver.Value, error) {
	if r == nil {
		r = ExportResults{}
	}
	data, err := json.Marshal([]ExportResult(r))
	if err != nil {
		return nil, fmt.Errorf("marshal export results: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the results slice.
func (r *ExportResults) Scan(value interface{}) error {
	if value == nil {
		*r = ExportResults{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportResults", value)
	}
	if len(data) == 0 {
		*r = ExportResults{}
		return nil
	}
	if err := json.Unmarshal(data, (*[]ExportResult)(r)); err != nil {
		return fmt.Errorf("unmarshal export results: %w", err)
	}
	return nil
}

// ExportLink is a signed download link for one finished document.
type ExportLink struct {
	RecordID  string    `json:"record_id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportJobStatus is the client view of a batch export.
type ExportJobStatus struct {
	ExportJob
	Links []ExportLink `json:"links,omitempty"`
}

// Has reports whether a stored document path belongs to these results.
func (r ExportResults) Has(path string) bool {
	if path == "" {
		return false
	}
	for _, res := range r {
		if res.Path == path {
			return true
		}
	}
	return false
}
