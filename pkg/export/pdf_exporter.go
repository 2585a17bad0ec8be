package export

import (
	"fmt"
	"time"
)

// PDFExporter renders datasets into a paginated table PDF.
type PDFExporter struct {
	created time.Time
}

// NewPDFExporter constructs a PDF exporter. created pins the document
// creation date so identical datasets produce identical bytes.
func NewPDFExporter(created time.Time) *PDFExporter {
	return &PDFExporter{created: creationDate(created)}
}

func (e *PDFExporter) ContentType() string { return ContentTypePDF }
func (e *PDFExporter) Extension() string   { return "pdf" }

// Render creates a PDF with the dataset title and one bordered table.
// The header row is repeated on every page.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	c := newCanvas(e.created)
	colWidth := c.printableWidth() / float64(len(data.Headers))
	y := pageMargin

	if data.Title != "" {
		c.font("B", 14)
		c.text(RoleTitle, pageMargin, y+5, data.Title)
		y += 12
	}

	header := func() {
		c.fillRect(pageMargin, y, c.printableWidth(), 8, 59, 130, 246)
		c.textColor(255, 255, 255)
		c.font("B", 9)
		for i, h := range data.Headers {
			c.text(RoleHeader, pageMargin+float64(i)*colWidth+1.5, y+5.5, c.fit(h, colWidth-3))
		}
		c.textColor(0, 0, 0)
		c.font("", 9)
		y += 8
	}
	header()

	bottom := c.height - pageMargin
	for i, row := range data.Rows {
		cells := data.cells(row)
		wrapped := make([][]string, len(cells))
		lines := 1
		for j, v := range cells {
			wrapped[j] = c.wrap(v, colWidth-3)
			lines = max(lines, len(wrapped[j]))
		}
		height := float64(lines)*4.5 + 3
		if y+height > bottom {
			c.addPage()
			y = pageMargin
			header()
		}
		if i%2 == 0 {
			c.fillRect(pageMargin, y, c.printableWidth(), height, 249, 250, 251)
		}
		for j, col := range wrapped {
			for k, line := range col {
				c.text(RoleCell, pageMargin+float64(j)*colWidth+1.5, y+4.5*float64(k+1), line)
			}
		}
		c.row(RowBox{Index: i, Top: y, Height: height})
		y += height
	}

	doc, err := c.document("", nil)
	if err != nil {
		return nil, err
	}
	return doc.Bytes()
}
