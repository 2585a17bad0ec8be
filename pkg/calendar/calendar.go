// Package calendar derives month grids and per-day event lists from dated records.
// Everything here is pure; callers rebuild the view on every navigation.
package calendar

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
)

// DefaultInlineLimit is how many events a day cell shows before collapsing the rest.
const DefaultInlineLimit = 2

// EventKind distinguishes the record type behind an event.
type EventKind string

const (
	KindObservation EventKind = "observation"
	KindJournal     EventKind = "journal"
)

// Event is a dated record projected into a common shape.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	TargetLink string    `json:"targetLink"`
}

// YearMonth identifies a displayed month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth reads "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return YearMonth{}, fmt.Errorf("invalid year in %q", s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return YearMonth{}, fmt.Errorf("invalid month in %q", s)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// First returns midnight of day 1 in loc.
func (ym YearMonth) First(loc *time.Location) time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Direction is a navigation step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// ParseDirection accepts "prev" or "next".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return Prev, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("invalid direction %q", s)
	}
}

// Navigate steps exactly one month, rolling over year boundaries.
func Navigate(ym YearMonth, dir Direction) YearMonth {
	step := 1
	if dir == Prev {
		step = -1
	}
	idx := ym.Year*12 + int(ym.Month) - 1 + step
	return YearMonth{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Cell is one grid slot. Blank cells pad the first week.
type Cell struct {
	Blank bool
	Date  time.Time
}

// Options tunes grid layout and time handling.
type Options struct {
	WeekStart   time.Weekday
	Location    *time.Location
	InlineLimit int
}

func (o Options) normalized() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.InlineLimit <= 0 {
		o.InlineLimit = DefaultInlineLimit
	}
	return o
}

// LeadingBlanks is the weekday offset of day 1 relative to weekStart.
func LeadingBlanks(ym YearMonth, weekStart time.Weekday) int {
	wd := ym.First(time.UTC).Weekday()
	return (int(wd) - int(weekStart) + 7) % 7
}

// Grid yields leading blank cells followed by one cell per day of the month.
// Each range over the sequence starts from the beginning.
func Grid(ym YearMonth, opts Options) iter.Seq[Cell] {
	opts = opts.normalized()
	return func(yield func(Cell) bool) {
		for i := 0; i < LeadingBlanks(ym, opts.WeekStart); i++ {
			if !yield(Cell{Blank: true}) {
				return
			}
		}
		for day := 1; day <= ym.Days(); day++ {
			if !yield(Cell{Date: time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, opts.Location)}) {
				return
			}
		}
	}
}

// SameDay compares calendar days, reading both instants in day's location.
func SameDay(a, day time.Time) bool {
	a = a.In(day.Location())
	y1, m1, d1 := a.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Bucket returns the events falling on day, in supplied order.
func Bucket(events []Event, day time.Time) []Event {
	var out []Event
	for _, e := range events {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// Summary is the inline portion of a day plus the count left out.
type Summary struct {
	Inline   []Event `json:"inline"`
	Overflow int     `json:"overflow"`
}

// Summarize keeps at most limit events inline.
func Summarize(events []Event, limit int) Summary {
	if limit <= 0 {
		limit = DefaultInlineLimit
	}
	if len(events) <= limit {
		return Summary{Inline: events}
	}
	return Summary{Inline: events[:limit], Overflow: len(events) - limit}
}

// Day is a rendered grid slot.
type Day struct {
	Blank  bool    `json:"blank"`
	Date   string  `json:"date,omitempty"`
	Events []Event `json:"events,omitempty"`
	Summary
}

// Month is the full view of one displayed month.
type Month struct {
	Month     string `json:"month"`
	Prev      string `json:"prev"`
	Next      string `json:"next"`
	WeekStart string `json:"weekStart"`
	Days      []Day  `json:"days"`
}

// BuildMonth derives the month view from the full event collection.
func BuildMonth(ym YearMonth, events []Event, opts Options) Month {
	opts = opts.normalized()
	m := Month{
		Month:     ym.String(),
		Prev:      Navigate(ym, Prev).String(),
		Next:      Navigate(ym, Next).String(),
		WeekStart: opts.WeekStart.String(),
	}
	for cell := range Grid(ym, opts) {
		if cell.Blank {
			m.Days = append(m.Days, Day{Blank: true})
			continue
		}
		bucket := Bucket(events, cell.Date)
		m.Days = append(m.Days, Day{
			Date:    cell.Date.Format("2006-01-02"),
			Events:  bucket,
			Summary: Summarize(bucket, opts.InlineLimit),
		})
	}
	return m
}
