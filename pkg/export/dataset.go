package export

import (
	"fmt"
	"strings"
	"time"
)

// Dataset defines tabular export content. Rows are ordered cell slices
// aligned with Headers; short rows are padded with empty cells.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (d Dataset) cells(row []string) []string {
	out := make([]string, len(d.Headers))
	copy(out, row)
	return out
}

// TableExporter renders a Dataset into one file format.
type TableExporter interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// Supported list export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ExporterFor picks the exporter for a list export format.
func ExporterFor(format, locale string, created time.Time) (TableExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return NewCSVExporter(locale), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	case FormatPDF:
		return NewPDFExporter(created), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
