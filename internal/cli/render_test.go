package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const observationFixture = `{
  "id": "form-1",
  "school": "Goethe-Schule",
  "grade": "7b",
  "duration_minutes": 45,
  "created_at": "2025-03-14T09:00:00Z",
  "entries": [
    {"id": "e2", "time_label": "08:10", "description": "Gruppenarbeit", "position": 2},
    {"id": "e1", "time_label": "08:00", "description": "Begrüßung", "position": 1}
  ]
}`

const journalFixture = `[
  {"id": "j1", "body": "Erster Tag", "mood": 4, "effort": 3, "entry_date": "2025-03-14T00:00:00Z", "semester_id": "SS25"},
  {"id": "j2", "body": "", "mood": 9, "effort": 2, "entry_date": "2025-03-15T00:00:00Z", "semester_id": "WS25"}
]`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestObservationCommandWritesPDF(t *testing.T) {
	out := t.TempDir()
	fixture := writeFixture(t, "form.json", observationFixture)

	stdout := execute(t, "observation", fixture, "--out", out)

	assert.Contains(t, stdout, `"id":"form-1"`)
	files, err := filepath.Glob(filepath.Join(out, "*.pdf"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(files[0]), "Beobachtung_Goethe-Schule_7b_"))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestJournalCommandRendersEachEntry(t *testing.T) {
	out := t.TempDir()
	fixture := writeFixture(t, "journal.json", journalFixture)

	stdout := execute(t, "journal", fixture, "-o", out)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"j1"`)
	files, err := filepath.Glob(filepath.Join(out, "*.pdf"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestJournalCommandKeepsSameDayEntries(t *testing.T) {
	out := t.TempDir()
	fixture := writeFixture(t, "journal.json", `[
  {"id": "j1", "body": "Vormittag", "mood": 3, "effort": 3, "entry_date": "2025-03-14T00:00:00Z"},
  {"id": "j2", "body": "Nachmittag", "mood": 4, "effort": 2, "entry_date": "2025-03-14T00:00:00Z"}
]`)

	stdout := execute(t, "journal", fixture, "-o", out)

	files, err := filepath.Glob(filepath.Join(out, "*.pdf"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.FileExists(t, filepath.Join(out, "Journal_2025-03-14.pdf"))
	assert.FileExists(t, filepath.Join(out, "Journal_2025-03-14_2.pdf"))
	assert.Contains(t, stdout, "Journal_2025-03-14_2.pdf")
}

func TestOutputNamesSkipsTakenSuffix(t *testing.T) {
	names := outputNames{}
	assert.Equal(t, "a_2.pdf", names.claim("a_2.pdf"))
	assert.Equal(t, "a.pdf", names.claim("a.pdf"))
	assert.Equal(t, "a_2_2.pdf", names.claim("a.pdf"))
}

func TestListCommandFiltersBySemester(t *testing.T) {
	out := t.TempDir()
	fixture := writeFixture(t, "journal.json", journalFixture)

	execute(t, "list", fixture, "--format", "csv", "--semester", "SS25", "-o", out)

	files, err := filepath.Glob(filepath.Join(out, "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Erster Tag")
	assert.NotContains(t, string(data), "15.03.2025")
}

func TestObservationCommandRejectsMissingFile(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"observation", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, cmd.Execute())
}
