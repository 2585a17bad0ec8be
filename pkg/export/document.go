package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// ContentTypePDF is the media type of rendered documents.
const ContentTypePDF = "application/pdf"

// Page geometry shared by every document, in millimetres.
const (
	pageMargin = 15.0
	fontFamily = "Helvetica"
)

// Role tags a laid-out text line with the part of the document it belongs to.
type Role string

const (
	RoleTitle   Role = "title"
	RoleMeta    Role = "meta"
	RoleHeader  Role = "header"
	RoleCell    Role = "cell"
	RoleHeading Role = "heading"
	RoleBody    Role = "body"
)

// Line is one piece of text placed on a page. Y is the baseline.
type Line struct {
	Role Role
	Text string
	X    float64
	Y    float64
}

// RowBox is the vertical extent of one table row.
type RowBox struct {
	Index  int
	Top    float64
	Height float64
}

// Bottom returns the lower edge of the row.
func (r RowBox) Bottom() float64 {
	return r.Top + r.Height
}

// Page is the recorded layout of a single output page.
type Page struct {
	Number int
	Lines  []Line
	Rows   []RowBox
}

// Document is a rendered, paginated report ready for serialisation.
type Document struct {
	Filename string
	// Degraded lists fields that were substituted while rendering.
	Degraded []string

	pdf        *gofpdf.Fpdf
	pages      []Page
	pageHeight float64
	data       []byte
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// PageHeight returns the page height in millimetres.
func (d *Document) PageHeight() float64 {
	return d.pageHeight
}

// Pages returns a copy of the recorded layout.
func (d *Document) Pages() []Page {
	out := make([]Page, len(d.pages))
	for i, p := range d.pages {
		out[i] = Page{
			Number: p.Number,
			Lines:  append([]Line(nil), p.Lines...),
			Rows:   append([]RowBox(nil), p.Rows...),
		}
	}
	return out
}

// Lines returns all lines with the given role in document order.
func (d *Document) Lines(role Role) []Line {
	var out []Line
	for _, p := range d.pages {
		for _, l := range p.Lines {
			if l.Role == role {
				out = append(out, l)
			}
		}
	}
	return out
}

// IsDegraded reports whether any field was substituted.
func (d *Document) IsDegraded() bool {
	return len(d.Degraded) > 0
}

// Bytes serialises the document. The result is cached.
func (d *Document) Bytes() ([]byte, error) {
	if d.data != nil {
		return d.data, nil
	}
	buf := &bytes.Buffer{}
	if err := d.pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	d.data = buf.Bytes()
	return d.data, nil
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// canvas wraps gofpdf and records every text placement for inspection.
type canvas struct {
	pdf    *gofpdf.Fpdf
	pages  []Page
	width  float64
	height float64
}

func newCanvas(created time.Time) *canvas {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCreationDate(created.UTC())
	pdf.SetCatalogSort(true)
	width, height := pdf.GetPageSize()
	c := &canvas{pdf: pdf, width: width, height: height}
	c.addPage()
	return c
}

func (c *canvas) printableWidth() float64 {
	return c.width - 2*pageMargin
}

func (c *canvas) addPage() {
	c.pdf.AddPage()
	c.pages = append(c.pages, Page{Number: len(c.pages) + 1})
}

func (c *canvas) current() *Page {
	return &c.pages[len(c.pages)-1]
}

func (c *canvas) font(style string, size float64) {
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *canvas) textColor(r, g, b int) {
	c.pdf.SetTextColor(r, g, b)
}

func (c *canvas) fillRect(x, y, w, h float64, r, g, b int) {
	c.pdf.SetFillColor(r, g, b)
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *canvas) text(role Role, x, y float64, s string) {
	c.pdf.Text(x, y, encodeCP1252(s))
	page := c.current()
	page.Lines = append(page.Lines, Line{Role: role, Text: s, X: x, Y: y})
}

func (c *canvas) row(box RowBox) {
	page := c.current()
	page.Rows = append(page.Rows, box)
}

// wrap splits s into lines no wider than w using the current font.
func (c *canvas) wrap(s string, w float64) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := c.pdf.SplitLines([]byte(encodeCP1252(s)), w)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = decodeCP1252(l)
	}
	return lines
}

// fit shortens s with an ellipsis until it is no wider than w.
func (c *canvas) fit(s string, w float64) string {
	if c.pdf.GetStringWidth(encodeCP1252(s)) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if c.pdf.GetStringWidth(encodeCP1252(candidate)) <= w {
			return candidate
		}
	}
	return ""
}

func (c *canvas) document(filename string, degraded []string) (*Document, error) {
	if err := c.pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return &Document{
		Filename:   filename,
		Degraded:   degraded,
		pdf:        c.pdf,
		pages:      c.pages,
		pageHeight: c.height,
	}, nil
}

// The core fonts are Windows-1252 encoded; unsupported runes become '?'.
func encodeCP1252(s string) string {
	s = strings.ToValidUTF8(s, "?")
	s = strings.ReplaceAll(s, "\t", "    ")
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			buf = append(buf, b)
			continue
		}
		buf = append(buf, '?')
	}
	return string(buf)
}

func decodeCP1252(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return sb.String()
}
