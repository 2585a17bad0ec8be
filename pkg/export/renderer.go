package export

import (
	"strings"
	"time"
	"unicode/utf8"
)

// fallbackCreated pins the PDF creation date when a record carries no timestamp.
var fallbackCreated = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RendererConfig tunes document wording and time presentation.
type RendererConfig struct {
	Labels   Labels
	Location *time.Location
	// Clock supplies the export date used in observation filenames.
	Clock func() time.Time
}

// DocumentRenderer lays out observation and journal records as PDF documents.
// It performs no I/O; callers decide where the bytes go.
type DocumentRenderer struct {
	labels   Labels
	location *time.Location
	clock    func() time.Time
}

// NewDocumentRenderer builds a renderer, defaulting to German labels and UTC.
func NewDocumentRenderer(cfg RendererConfig) *DocumentRenderer {
	labels := cfg.Labels
	if labels.ObservationTitle == "" {
		labels = German
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &DocumentRenderer{labels: labels, location: loc, clock: clock}
}

// Labels returns the label set in use.
func (r *DocumentRenderer) Labels() Labels {
	return r.labels
}

func (r *DocumentRenderer) formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.location).Format(layout)
}

// degradations collects the names of fields that were substituted.
type degradations []string

func (d *degradations) add(field string) {
	*d = append(*d, field)
}

// text normalises a field, recording it when it had to be replaced.
func (d *degradations) text(field, value string, required bool) string {
	if !utf8.ValidString(value) {
		d.add(field)
		value = strings.ToValidUTF8(value, "?")
	}
	value = strings.TrimSpace(value)
	if value == "" && required {
		d.add(field)
	}
	return value
}

func creationDate(t time.Time) time.Time {
	if t.IsZero() {
		return fallbackCreated
	}
	return t
}

// FormatDate renders t as a calendar date in the renderer's location and language.
func (r *DocumentRenderer) FormatDate(t time.Time) string {
	return r.formatDate(t, r.labels.DateLayout)
}

// ObservationTableFilename names a tabular export of an observation's entries
// like its PDF, with ext as the extension.
func (r *DocumentRenderer) ObservationTableFilename(school, grade, ext string) string {
	name := ObservationFilename(r.labels, school, grade, r.clock().In(r.location))
	return strings.TrimSuffix(name, ".pdf") + "." + ext
}
