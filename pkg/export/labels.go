package export

import "strings"

// Labels carries every user-visible string of the rendered documents.
type Labels struct {
	ObservationTitle  string
	School            string
	Grade             string
	Duration          string
	DurationUnit      string
	CreatedAt         string
	ClassComment      string
	ColumnTime        string
	ColumnDescription string
	ColumnComment     string

	JournalTitle string
	EntryDate    string
	Mood         string
	Effort       string
	Shared       string
	Yes          string
	No           string
	Content      string

	MoodScale   [5]string
	EffortScale [5]string

	DateLayout     string
	DateTimeLayout string

	ObservationFilePrefix string
	JournalFilePrefix     string
}

// German mirrors the wording of the web front-end.
var German = Labels{
	ObservationTitle:  "Beobachtungsbogen",
	School:            "Schule",
	Grade:             "Klasse",
	Duration:          "Dauer",
	DurationUnit:      "Minuten",
	CreatedAt:         "Erstellt am",
	ClassComment:      "Kommentar",
	ColumnTime:        "Zeit (min)",
	ColumnDescription: "Was ist passiert?",
	ColumnComment:     "Kommentar",

	JournalTitle: "Journal-Eintrag",
	EntryDate:    "Datum",
	Mood:         "Stimmung",
	Effort:       "Anstrengung",
	Shared:       "Mit Betreuer:in geteilt",
	Yes:          "Ja",
	No:           "Nein",
	Content:      "Inhalt:",

	MoodScale:   [5]string{"Sehr schlecht", "Schlecht", "Neutral", "Gut", "Sehr gut"},
	EffortScale: [5]string{"Sehr wenig", "Wenig", "Mittel", "Viel", "Sehr viel"},

	DateLayout:     "02.01.2006",
	DateTimeLayout: "02.01.2006, 15:04",

	ObservationFilePrefix: "Beobachtung",
	JournalFilePrefix:     "Journal",
}

var English = Labels{
	ObservationTitle:  "Observation Sheet",
	School:            "School",
	Grade:             "Grade",
	Duration:          "Duration",
	DurationUnit:      "minutes",
	CreatedAt:         "Created on",
	ClassComment:      "Comment",
	ColumnTime:        "Time (min)",
	ColumnDescription: "What happened?",
	ColumnComment:     "Comment",

	JournalTitle: "Journal Entry",
	EntryDate:    "Date",
	Mood:         "Mood",
	Effort:       "Effort",
	Shared:       "Shared with supervisor",
	Yes:          "Yes",
	No:           "No",
	Content:      "Content:",

	MoodScale:   [5]string{"Very bad", "Bad", "Neutral", "Good", "Very good"},
	EffortScale: [5]string{"Very low", "Low", "Medium", "High", "Very high"},

	DateLayout:     "02/01/2006",
	DateTimeLayout: "02/01/2006 15:04",

	ObservationFilePrefix: "Observation",
	JournalFilePrefix:     "Journal",
}

// LabelsFor resolves a locale code, defaulting to German.
func LabelsFor(locale string) Labels {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en", "en-us", "en-gb", "english":
		return English
	default:
		return German
	}
}

// MoodLabel maps a 1..5 mood rating to its label. Out-of-range values yield the neutral label.
func (l Labels) MoodLabel(value int) string {
	return scaleLabel(l.MoodScale, value)
}

// EffortLabel maps a 1..5 effort rating to its label. Out-of-range values yield the medium label.
func (l Labels) EffortLabel(value int) string {
	return scaleLabel(l.EffortScale, value)
}

// YesNo renders a boolean in the label language.
func (l Labels) YesNo(v bool) string {
	if v {
		return l.Yes
	}
	return l.No
}

// MoodLabel uses the default German scale.
func MoodLabel(value int) string {
	return German.MoodLabel(value)
}

// EffortLabel uses the default German scale.
func EffortLabel(value int) string {
	return German.EffortLabel(value)
}

func scaleLabel(scale [5]string, value int) string {
	if value < 1 || value > len(scale) {
		return scale[len(scale)/2]
	}
	return scale[value-1]
}

// InScale reports whether value indexes a label directly.
func InScale(value int) bool {
	return value >= 1 && value <= 5
}
