package export

import "time"

// JournalPage is the content of a journal report.
type JournalPage struct {
	Body      string
	Mood      int
	Effort    int
	Shared    bool
	EntryDate time.Time
}

const (
	bodyLineHeight = 7.0
	// body lines start a new page once the cursor passes this distance from the bottom
	bodyBottomReserve = 20.0
)

// Journal renders a single journal entry. An empty body yields a document
// with the label block only.
func (r *DocumentRenderer) Journal(page JournalPage) (*Document, error) {
	var degraded degradations
	l := r.labels

	body := degraded.text("body", page.Body, false)
	date := r.formatDate(page.EntryDate, l.DateTimeLayout)
	if date == "" {
		degraded.add("entryDate")
	}
	if !InScale(page.Mood) {
		degraded.add("mood")
	}
	if !InScale(page.Effort) {
		degraded.add("effort")
	}

	c := newCanvas(creationDate(page.EntryDate))
	y := pageMargin

	c.textColor(0, 0, 0)
	c.font("B", 20)
	c.text(RoleTitle, pageMargin, y, l.JournalTitle)
	y += 10

	c.font("", 11)
	c.text(RoleMeta, pageMargin, y, l.EntryDate+": "+date)
	y += 10
	c.text(RoleMeta, pageMargin, y, l.Mood+": "+l.MoodLabel(page.Mood))
	y += 7
	c.text(RoleMeta, pageMargin, y, l.Effort+": "+l.EffortLabel(page.Effort))
	y += 7
	c.text(RoleMeta, pageMargin, y, l.Shared+": "+l.YesNo(page.Shared))
	y += 12

	c.font("B", 11)
	c.text(RoleHeading, pageMargin, y, l.Content)
	y += 7

	c.font("", 11)
	limit := c.height - bodyBottomReserve
	for _, line := range c.wrap(body, c.printableWidth()) {
		if y > limit {
			c.addPage()
			y = pageMargin
		}
		c.text(RoleBody, pageMargin, y, line)
		y += bodyLineHeight
	}

	return c.document(JournalFilename(l, page.EntryDate.In(r.location)), degraded)
}
