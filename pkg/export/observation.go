package export

import (
	"fmt"
	"time"
)

// ObservationSheet is the header data of an observation report.
type ObservationSheet struct {
	School          string
	Grade           string
	DurationMinutes int
	ClassComment    string
	CreatedAt       time.Time
}

// ObservationRow is one table row, rendered in the order supplied.
type ObservationRow struct {
	TimeLabel   string
	Description string
	Comment     string
}

const (
	tableHeaderHeight  = 10.0
	tableHeaderAdvance = 12.0
	rowLineHeight      = 5.0
	rowPadding         = 5.0
	// rows may not extend into the last 30mm of a page
	tableBottomReserve = 30.0

	timeColumnOffset        = 5.0
	timeColumnWidth         = 28.0
	descriptionColumnOffset = 35.0
	descriptionColumnWidth  = 65.0
	commentColumnOffset     = 105.0
	commentColumnWidth      = 75.0
)

// RowHeight is the vertical space a row with the given wrapped line count
// occupies: lines*5 + 5 mm. A row is never shorter than one line because the
// time label always takes the first line, so an empty row is 10mm, not 5mm.
func RowHeight(lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*rowLineHeight + rowPadding
}

// Observation renders an observation sheet with its table of rows.
//
// Rows are never split across pages. A description or comment that wraps to
// more lines than fit on an empty page is cut to that many lines, and the field
// is listed in Document.Degraded as rows[i].description or rows[i].comment.
func (r *DocumentRenderer) Observation(sheet ObservationSheet, rows []ObservationRow) (*Document, error) {
	var degraded degradations
	l := r.labels

	school := degraded.text("school", sheet.School, true)
	grade := degraded.text("grade", sheet.Grade, true)
	comment := degraded.text("classComment", sheet.ClassComment, false)
	duration := ""
	if sheet.DurationMinutes > 0 {
		duration = fmt.Sprintf("%d %s", sheet.DurationMinutes, l.DurationUnit)
	} else {
		degraded.add("durationMinutes")
	}
	created := r.formatDate(sheet.CreatedAt, l.DateLayout)
	if created == "" {
		degraded.add("createdAt")
	}

	c := newCanvas(creationDate(sheet.CreatedAt))
	y := pageMargin

	c.textColor(0, 0, 0)
	c.font("B", 20)
	c.text(RoleTitle, pageMargin, y, l.ObservationTitle)
	y += 10

	c.font("", 11)
	c.text(RoleMeta, pageMargin, y, l.School+": "+school)
	y += 7
	c.text(RoleMeta, pageMargin, y, l.Grade+": "+grade)
	y += 7
	c.text(RoleMeta, pageMargin, y, l.Duration+": "+duration)
	y += 7
	c.text(RoleMeta, pageMargin, y, l.CreatedAt+": "+created)
	y += 10

	if comment != "" {
		c.font("I", 11)
		for _, line := range c.wrap(l.ClassComment+": "+comment, c.printableWidth()) {
			c.text(RoleMeta, pageMargin, y, line)
			y += rowLineHeight
		}
		y += 5
	}

	c.fillRect(pageMargin, y, c.printableWidth(), tableHeaderHeight, 59, 130, 246)
	c.textColor(255, 255, 255)
	c.font("B", 10)
	c.text(RoleHeader, pageMargin+timeColumnOffset, y+7, l.ColumnTime)
	c.text(RoleHeader, pageMargin+descriptionColumnOffset, y+7, l.ColumnDescription)
	c.text(RoleHeader, pageMargin+commentColumnOffset, y+7, l.ColumnComment)
	y += tableHeaderAdvance

	c.textColor(0, 0, 0)
	c.font("", 10)
	maxLines := maxRowLines(c.height)
	bottom := c.height - tableBottomReserve

	for i, row := range rows {
		field := func(name string) string { return fmt.Sprintf("rows[%d].%s", i, name) }
		timeLabel := c.fit(degraded.text(field("timeLabel"), row.TimeLabel, true), timeColumnWidth)
		desc := c.wrap(degraded.text(field("description"), row.Description, true), descriptionColumnWidth)
		note := c.wrap(degraded.text(field("comment"), row.Comment, false), commentColumnWidth)

		if len(desc) > maxLines {
			desc = desc[:maxLines]
			degraded.add(field("description"))
		}
		if len(note) > maxLines {
			note = note[:maxLines]
			degraded.add(field("comment"))
		}

		height := RowHeight(max(len(desc), len(note)))
		if y+height > bottom {
			c.addPage()
			y = pageMargin
		}
		if i%2 == 0 {
			c.fillRect(pageMargin, y, c.printableWidth(), height, 249, 250, 251)
		}

		c.text(RoleCell, pageMargin+timeColumnOffset, y+rowLineHeight, timeLabel)
		for k, line := range desc {
			c.text(RoleCell, pageMargin+descriptionColumnOffset, y+rowLineHeight*float64(k+1), line)
		}
		for k, line := range note {
			c.text(RoleCell, pageMargin+commentColumnOffset, y+rowLineHeight*float64(k+1), line)
		}
		c.row(RowBox{Index: i, Top: y, Height: height})
		y += height
	}

	name := ObservationFilename(l, sheet.School, sheet.Grade, r.clock().In(r.location))
	return c.document(name, degraded)
}

// maxRowLines is the tallest row that still fits on an empty page.
func maxRowLines(pageHeight float64) int {
	usable := pageHeight - tableBottomReserve - pageMargin - rowPadding
	return int(usable / rowLineHeight)
}
