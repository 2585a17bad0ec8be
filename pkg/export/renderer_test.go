package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportDay = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestRenderer() *DocumentRenderer {
	return NewDocumentRenderer(RendererConfig{Clock: func() time.Time { return exportDay }})
}

func sampleSheet() ObservationSheet {
	return ObservationSheet{
		School:          "Gesamtschule Nord",
		Grade:           "7b",
		DurationMinutes: 45,
		ClassComment:    "Unruhige Klasse nach der Pause",
		CreatedAt:       time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC),
	}
}

func longRows(n int) []ObservationRow {
	rows := make([]ObservationRow, n)
	for i := range rows {
		rows[i] = ObservationRow{
			TimeLabel:   "0-5",
			Description: strings.Repeat("Die Lehrkraft erklärt die Aufgabe an der Tafel. ", 8+i%5),
			Comment:     strings.Repeat("Schüler:innen wirken aufmerksam. ", 3+i%7),
		}
	}
	return rows
}

func TestObservationHeaderAndMeta(t *testing.T) {
	doc, err := newTestRenderer().Observation(sampleSheet(), []ObservationRow{{TimeLabel: "0-5", Description: "Begrüßung"}})
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageCount())
	assert.Empty(t, doc.Degraded)
	assert.Equal(t, "Beobachtung_Gesamtschule-Nord_7b_2025-03-14.pdf", doc.Filename)

	title := doc.Lines(RoleTitle)
	require.Len(t, title, 1)
	assert.Equal(t, "Beobachtungsbogen", title[0].Text)

	meta := doc.Lines(RoleMeta)
	require.Len(t, meta, 5)
	assert.Equal(t, "Schule: Gesamtschule Nord", meta[0].Text)
	assert.Equal(t, "Klasse: 7b", meta[1].Text)
	assert.Equal(t, "Dauer: 45 Minuten", meta[2].Text)
	assert.Equal(t, "Erstellt am: 03.03.2025", meta[3].Text)
	assert.Equal(t, "Kommentar: Unruhige Klasse nach der Pause", meta[4].Text)

	headers := doc.Lines(RoleHeader)
	require.Len(t, headers, 3)
	assert.Equal(t, "Zeit (min)", headers[0].Text)

	cells := doc.Lines(RoleCell)
	require.Len(t, cells, 2)
	assert.Equal(t, "0-5", cells[0].Text)
	assert.Equal(t, "Begrüßung", cells[1].Text)
}

func TestObservationWithoutCommentOmitsLine(t *testing.T) {
	sheet := sampleSheet()
	sheet.ClassComment = "   "
	doc, err := newTestRenderer().Observation(sheet, nil)
	require.NoError(t, err)
	assert.Len(t, doc.Lines(RoleMeta), 4)
	assert.Empty(t, doc.Lines(RoleCell))
	assert.Empty(t, doc.Degraded)
}

func TestObservationRowsNeverSplitAcrossPages(t *testing.T) {
	rows := longRows(30)
	doc, err := newTestRenderer().Observation(sampleSheet(), rows)
	require.NoError(t, err)
	require.Greater(t, doc.PageCount(), 1)

	limit := doc.PageHeight() - tableBottomReserve
	seen := make(map[int]int)
	for _, page := range doc.Pages() {
		for _, box := range page.Rows {
			seen[box.Index]++
			assert.GreaterOrEqual(t, box.Top, pageMargin)
			assert.LessOrEqual(t, box.Bottom(), limit, "row %d overflows page %d", box.Index, page.Number)
		}
		for _, line := range page.Lines {
			if line.Role != RoleCell {
				continue
			}
			inside := false
			for _, box := range page.Rows {
				if line.Y > box.Top && line.Y <= box.Bottom() {
					inside = true
					break
				}
			}
			assert.True(t, inside, "cell line %q on page %d is outside every row", line.Text, page.Number)
		}
	}
	require.Len(t, seen, len(rows))
	for idx, count := range seen {
		assert.Equal(t, 1, count, "row %d drawn %d times", idx, count)
	}

	// every later page starts its first row at the top margin
	for _, page := range doc.Pages()[1:] {
		require.NotEmpty(t, page.Rows)
		assert.Equal(t, pageMargin, page.Rows[0].Top)
	}
}

func TestObservationRowOrderIsPreserved(t *testing.T) {
	rows := []ObservationRow{
		{TimeLabel: "20", Description: "drei"},
		{TimeLabel: "5", Description: "eins"},
		{TimeLabel: "10", Description: "zwei"},
	}
	doc, err := newTestRenderer().Observation(sampleSheet(), rows)
	require.NoError(t, err)

	var times []string
	for _, l := range doc.Lines(RoleCell) {
		if l.X == pageMargin+timeColumnOffset {
			times = append(times, l.Text)
		}
	}
	assert.Equal(t, []string{"20", "5", "10"}, times)
}

func TestObservationZebraRowHeight(t *testing.T) {
	assert.Equal(t, 10.0, RowHeight(0))
	assert.Equal(t, 10.0, RowHeight(1))
	assert.Equal(t, 20.0, RowHeight(3))
}

func TestObservationCutsRowTallerThanPage(t *testing.T) {
	huge := strings.Repeat("Sehr lange Beschreibung einer Unterrichtsphase. ", 400)
	rows := []ObservationRow{
		{TimeLabel: "0-5", Description: "kurz"},
		{TimeLabel: "5-10", Description: huge, Comment: huge},
	}
	doc, err := newTestRenderer().Observation(sampleSheet(), rows)
	require.NoError(t, err)

	assert.Contains(t, doc.Degraded, "rows[1].description")
	assert.Contains(t, doc.Degraded, "rows[1].comment")
	assert.NotContains(t, doc.Degraded, "rows[0].description")

	limit := doc.PageHeight() - tableBottomReserve
	maxLines := maxRowLines(doc.PageHeight())
	var tall *RowBox
	for _, page := range doc.Pages() {
		for i := range page.Rows {
			box := page.Rows[i]
			assert.LessOrEqual(t, box.Bottom(), limit)
			if box.Index == 1 {
				tall = &box
			}
		}
	}
	require.NotNil(t, tall)
	assert.Equal(t, RowHeight(maxLines), tall.Height)
	assert.Equal(t, pageMargin, tall.Top)
}

func TestObservationDegradesMissingText(t *testing.T) {
	doc, err := newTestRenderer().Observation(ObservationSheet{}, []ObservationRow{{Comment: "nur Kommentar"}})
	require.NoError(t, err)
	assert.True(t, doc.IsDegraded())
	assert.Contains(t, doc.Degraded, "school")
	assert.Contains(t, doc.Degraded, "grade")
	assert.Contains(t, doc.Degraded, "durationMinutes")
	assert.Contains(t, doc.Degraded, "createdAt")
	assert.Contains(t, doc.Degraded, "rows[0].description")
	assert.Equal(t, "Beobachtung_2025-03-14.pdf", doc.Filename)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestObservationRenderingIsDeterministic(t *testing.T) {
	r := newTestRenderer()
	rows := longRows(12)

	first, err := r.Observation(sampleSheet(), rows)
	require.NoError(t, err)
	second, err := r.Observation(sampleSheet(), rows)
	require.NoError(t, err)

	assert.Equal(t, first.PageCount(), second.PageCount())
	assert.Equal(t, first.Pages(), second.Pages())

	a, err := first.Bytes()
	require.NoError(t, err)
	b, err := second.Bytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestJournalLabelBlock(t *testing.T) {
	doc, err := newTestRenderer().Journal(JournalPage{
		Body:      "Heute habe ich zum ersten Mal unterrichtet.",
		Mood:      4,
		Effort:    5,
		Shared:    true,
		EntryDate: time.Date(2025, time.May, 2, 14, 5, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	meta := doc.Lines(RoleMeta)
	require.Len(t, meta, 4)
	assert.Equal(t, "Datum: 02.05.2025, 14:05", meta[0].Text)
	assert.Equal(t, "Stimmung: Gut", meta[1].Text)
	assert.Equal(t, "Anstrengung: Sehr viel", meta[2].Text)
	assert.Equal(t, "Mit Betreuer:in geteilt: Ja", meta[3].Text)
	require.Len(t, doc.Lines(RoleHeading), 1)
	require.Len(t, doc.Lines(RoleBody), 1)
	assert.Equal(t, "Journal_2025-05-02.pdf", doc.Filename)
}

func TestJournalEmptyBodyHasNoContentLines(t *testing.T) {
	doc, err := newTestRenderer().Journal(JournalPage{Mood: 3, Effort: 3, EntryDate: exportDay})
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageCount())
	assert.Empty(t, doc.Lines(RoleBody))
	assert.Len(t, doc.Lines(RoleHeading), 1)

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestJournalOutOfRangeRatingsFallBack(t *testing.T) {
	doc, err := newTestRenderer().Journal(JournalPage{Body: "x", Mood: 0, Effort: 11, EntryDate: exportDay})
	require.NoError(t, err)

	meta := doc.Lines(RoleMeta)
	assert.Equal(t, "Stimmung: Neutral", meta[1].Text)
	assert.Equal(t, "Anstrengung: Mittel", meta[2].Text)
	assert.ElementsMatch(t, []string{"mood", "effort"}, doc.Degraded)
}

func TestJournalLongBodyBreaksPages(t *testing.T) {
	body := strings.Repeat("Ein langer Absatz über den Praktikumstag, der sich über viele Zeilen erstreckt.\n", 80)
	doc, err := newTestRenderer().Journal(JournalPage{Body: body, Mood: 2, Effort: 2, EntryDate: exportDay})
	require.NoError(t, err)
	require.Greater(t, doc.PageCount(), 1)

	limit := doc.PageHeight() - bodyBottomReserve
	for _, page := range doc.Pages() {
		for _, line := range page.Lines {
			assert.LessOrEqual(t, line.Y, limit)
		}
	}
	for _, page := range doc.Pages()[1:] {
		require.NotEmpty(t, page.Lines)
		assert.Equal(t, pageMargin, page.Lines[0].Y)
	}
}

func TestRendererUsesConfiguredLocation(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	r := NewDocumentRenderer(RendererConfig{Location: berlin, Clock: func() time.Time { return exportDay }})
	doc, err := r.Journal(JournalPage{EntryDate: time.Date(2025, time.May, 2, 23, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "Datum: 03.05.2025, 00:30", doc.Lines(RoleMeta)[0].Text)
	assert.Equal(t, "Journal_2025-05-03.pdf", doc.Filename)
}

func TestEncodeCP1252(t *testing.T) {
	assert.Equal(t, "Gr\xfc\xdfe", encodeCP1252("Grüße"))
	assert.Equal(t, "a?b", encodeCP1252("a☃b"))
	assert.Equal(t, "Grüße", decodeCP1252([]byte(encodeCP1252("Grüße"))))
}
