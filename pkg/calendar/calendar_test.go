package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ym YearMonth, opts Options) (blanks, days int) {
	for c := range Grid(ym, opts) {
		if c.Blank {
			blanks++
			continue
		}
		days++
	}
	return blanks, days
}

func TestGridDayCounts(t *testing.T) {
	cases := []struct {
		ym     YearMonth
		blanks int
		days   int
	}{
		{YearMonth{2025, time.February}, 6, 28}, // 1 Feb 2025 is a Saturday
		{YearMonth{2024, time.February}, 4, 29}, // 1 Feb 2024 is a Thursday
		{YearMonth{2025, time.June}, 0, 30},     // Sunday
		{YearMonth{2025, time.December}, 1, 31},
		{YearMonth{1900, time.February}, 4, 28},
		{YearMonth{2000, time.February}, 2, 29},
	}
	for _, tc := range cases {
		blanks, days := collect(tc.ym, Options{})
		assert.Equal(t, tc.blanks, blanks, tc.ym.String())
		assert.Equal(t, tc.days, days, tc.ym.String())
	}
}

func TestGridMondayWeekStart(t *testing.T) {
	blanks, days := collect(YearMonth{2025, time.June}, Options{WeekStart: time.Monday})
	assert.Equal(t, 6, blanks)
	assert.Equal(t, 30, days)
}

func TestGridIsRestartableAndStopsEarly(t *testing.T) {
	seq := Grid(YearMonth{2025, time.March}, Options{})
	var first, second []Cell
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)

	last := first[len(first)-1]
	assert.Equal(t, 31, last.Date.Day())
	assert.Equal(t, time.UTC, last.Date.Location())
}

func TestNavigate(t *testing.T) {
	assert.Equal(t, YearMonth{2026, time.January}, Navigate(YearMonth{2025, time.December}, Next))
	assert.Equal(t, YearMonth{2024, time.December}, Navigate(YearMonth{2025, time.January}, Prev))
	assert.Equal(t, YearMonth{2025, time.July}, Navigate(YearMonth{2025, time.June}, Next))
	assert.Equal(t, YearMonth{2025, time.May}, Navigate(YearMonth{2025, time.June}, Prev))

	ym := YearMonth{2025, time.March}
	assert.Equal(t, ym, Navigate(Navigate(ym, Next), Prev))
}

func TestParseYearMonthAndDirection(t *testing.T) {
	ym, err := ParseYearMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2025, time.February}, ym)
	assert.Equal(t, "2025-02", ym.String())

	for _, bad := range []string{"", "2025", "2025-13", "abcd-01", "2025-00"} {
		_, err := ParseYearMonth(bad)
		assert.Error(t, err, bad)
	}

	dir, err := ParseDirection("prev")
	require.NoError(t, err)
	assert.Equal(t, Prev, dir)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestBucketMatchesCalendarDayInSuppliedOrder(t *testing.T) {
	day := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "late", Date: time.Date(2025, time.May, 2, 23, 59, 0, 0, time.UTC)},
		{ID: "other", Date: time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "early", Date: time.Date(2025, time.May, 2, 0, 0, 1, 0, time.UTC)},
		{ID: "before", Date: time.Date(2025, time.May, 1, 23, 59, 59, 0, time.UTC)},
		{ID: "noon", Date: time.Date(2025, time.May, 2, 12, 0, 0, 0, time.UTC)},
	}

	got := Bucket(events, day)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"late", "early", "noon"}, ids)
	assert.Empty(t, Bucket(events, day.AddDate(0, 0, 5)))
}

func TestBucketUsesDayLocation(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	day := time.Date(2025, time.May, 3, 0, 0, 0, 0, cet)
	events := []Event{{ID: "utc-late", Date: time.Date(2025, time.May, 2, 23, 30, 0, 0, time.UTC)}}
	assert.Len(t, Bucket(events, day), 1)
}

func TestSummarize(t *testing.T) {
	events := []Event{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	s := Summarize(events, DefaultInlineLimit)
	assert.Equal(t, events[:2], s.Inline)
	assert.Equal(t, 2, s.Overflow)

	s = Summarize(events[:2], 2)
	assert.Len(t, s.Inline, 2)
	assert.Zero(t, s.Overflow)

	s = Summarize(events, 0)
	assert.Len(t, s.Inline, DefaultInlineLimit)
}

func TestBuildMonth(t *testing.T) {
	ym := YearMonth{2025, time.February}
	events := []Event{
		{ID: "1", Kind: KindObservation, Date: time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)},
		{ID: "2", Kind: KindJournal, Date: time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)},
		{ID: "3", Kind: KindJournal, Date: time.Date(2025, 2, 3, 18, 0, 0, 0, time.UTC)},
		{ID: "4", Kind: KindJournal, Date: time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)},
	}

	m := BuildMonth(ym, events, Options{})
	assert.Equal(t, "2025-02", m.Month)
	assert.Equal(t, "2025-01", m.Prev)
	assert.Equal(t, "2025-03", m.Next)
	assert.Equal(t, "Sunday", m.WeekStart)
	require.Len(t, m.Days, 6+28)

	for _, d := range m.Days[:6] {
		assert.True(t, d.Blank)
	}
	third := m.Days[6+2]
	assert.Equal(t, "2025-02-03", third.Date)
	assert.Len(t, third.Events, 3)
	assert.Len(t, third.Inline, 2)
	assert.Equal(t, 1, third.Overflow)

	again := BuildMonth(ym, events, Options{})
	assert.Equal(t, m, again)
}
