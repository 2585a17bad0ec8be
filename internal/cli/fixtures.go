package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

// fixtureStore serves records decoded from files. Ownership is not checked:
// whoever holds the file holds the records.
type fixtureStore struct {
	observations map[string]*models.ObservationFormDetail
	journals     []models.JournalEntry
}

func newFixtureStore() *fixtureStore {
	return &fixtureStore{observations: map[string]*models.ObservationFormDetail{}}
}

// decodeList accepts either a single JSON object or an array of them.
func decodeList[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return items, nil
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []T{item}, nil
}

func (s *fixtureStore) loadObservations(path string) ([]string, error) {
	forms, err := decodeList[models.ObservationFormDetail](path)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(forms))
	for i := range forms {
		form := forms[i]
		if form.ID == "" {
			form.ID = fmt.Sprintf("observation-%d", i+1)
		}
		sort.SliceStable(form.Entries, func(a, b int) bool {
			return form.Entries[a].Position < form.Entries[b].Position
		})
		s.observations[form.ID] = &form
		ids = append(ids, form.ID)
	}
	return ids, nil
}

func (s *fixtureStore) loadJournals(path string) ([]string, error) {
	entries, err := decodeList[models.JournalEntry](path)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = fmt.Sprintf("journal-%d", i+1)
		}
		ids = append(ids, entries[i].ID)
	}
	s.journals = append(s.journals, entries...)
	return ids, nil
}

func (s *fixtureStore) Get(_ context.Context, id, _ string) (*models.ObservationFormDetail, error) {
	form, ok := s.observations[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return form, nil
}

// journalFixtures adapts the store to the journal reader contract, whose Get
// collides with the observation one.
type journalFixtures struct{ *fixtureStore }

func (j journalFixtures) Get(_ context.Context, id, _ string) (*models.JournalEntry, error) {
	for i := range j.journals {
		if j.journals[i].ID == id {
			return &j.journals[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (j journalFixtures) List(_ context.Context, _ string, filter models.JournalFilter) ([]models.JournalEntry, error) {
	out := make([]models.JournalEntry, 0, len(j.journals))
	for _, e := range j.journals {
		if filter.SemesterID != "" && (e.SemesterID == nil || *e.SemesterID != filter.SemesterID) {
			continue
		}
		if filter.From != nil && e.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.EntryDate.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].EntryDate.After(out[b].EntryDate) })
	return out, nil
}
