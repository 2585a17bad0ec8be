package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// RowState tags an EntryRow as stored or not yet stored.
type RowState string

const (
	RowPersisted RowState = "persisted"
	RowDraft     RowState = "draft"
)

// EntryRow is a sheet row as edited by a client: either Persisted with a
// store id or Draft with a client-side ULID key.
type EntryRow struct {
	State    RowState              `json:"state" validate:"required,oneof=persisted draft"`
	ID       string                `json:"id,omitempty"`
	LocalKey string                `json:"local_key,omitempty"`
	Fields   ObservationEntryInput `json:"fields"`
}

// Promotion records a draft row that now has a store id.
type Promotion struct {
	LocalKey string           `json:"local_key"`
	Entry    ObservationEntry `json:"entry"`
}

// SheetSaveResult summarises a sheet save.
type SheetSaveResult struct {
	Updated  []ObservationEntry `json:"updated"`
	Promoted []Promotion        `json:"promoted"`
	// Skipped lists draft keys left unsaved because they were still empty.
	Skipped []string `json:"skipped"`
}

var errRowState = errors.New("invalid entry row state")

// NewDraftRow creates a draft with a fresh local key.
func NewDraftRow(fields ObservationEntryInput) EntryRow {
	return EntryRow{State: RowDraft, LocalKey: ulid.Make().String(), Fields: fields}
}

// PersistedRow wraps a stored entry.
func PersistedRow(entry ObservationEntry) EntryRow {
	return EntryRow{
		State: RowPersisted,
		ID:    entry.ID,
		Fields: ObservationEntryInput{
			TimeLabel:   entry.TimeLabel,
			Description: entry.Description,
			Comment:     entry.Comment,
		},
	}
}

// IsDraft reports whether the row has not been stored yet.
func (r EntryRow) IsDraft() bool {
	return r.State == RowDraft
}

// Check verifies that exactly the identifier matching the state is present.
func (r EntryRow) Check() error {
	switch r.State {
	case RowPersisted:
		if r.ID == "" || r.LocalKey != "" {
			return fmt.Errorf("%w: persisted row needs an id only", errRowState)
		}
	case RowDraft:
		if r.ID != "" {
			return fmt.Errorf("%w: draft row must not carry an id", errRowState)
		}
		if _, err := ulid.ParseStrict(r.LocalKey); err != nil {
			return fmt.Errorf("%w: draft key: %v", errRowState, err)
		}
	default:
		return fmt.Errorf("%w: %q", errRowState, r.State)
	}
	return nil
}

// Ready reports whether a draft has enough content to be stored.
func (r EntryRow) Ready() bool {
	return strings.TrimSpace(r.Fields.TimeLabel) != "" && strings.TrimSpace(r.Fields.Description) != ""
}

// Promote turns a draft into a persisted row once the store assigned an id.
func (r EntryRow) Promote(entry ObservationEntry) (EntryRow, Promotion, error) {
	if !r.IsDraft() {
		return r, Promotion{}, fmt.Errorf("%w: only drafts can be promoted", errRowState)
	}
	return PersistedRow(entry), Promotion{LocalKey: r.LocalKey, Entry: entry}, nil
}
