package export

import (
	"strings"
	"time"
	"unicode"
)

const isoDate = "2006-01-02"

// ObservationFilename names an observation export: <prefix>_<school>_<grade>_<export date>.pdf.
func ObservationFilename(l Labels, school, grade string, exportedAt time.Time) string {
	return joinFilename(l.ObservationFilePrefix, sanitizeSegment(school), sanitizeSegment(grade), dateSegment(exportedAt)) + ".pdf"
}

// JournalFilename names a journal export after the entry date.
func JournalFilename(l Labels, entryDate time.Time) string {
	return joinFilename(l.JournalFilePrefix, dateSegment(entryDate)) + ".pdf"
}

func dateSegment(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDate)
}

func joinFilename(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}

// sanitizeSegment keeps letters, digits and dots; whitespace and separators collapse to '-'.
func sanitizeSegment(s string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.':
			sb.WriteRune(r)
			lastDash = false
		case unicode.IsSpace(r) || strings.ContainsRune("-_/\\", r):
			if !lastDash && sb.Len() > 0 {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-.")
}
