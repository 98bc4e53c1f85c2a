// Package export renders tabular datasets as downloadable documents.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned by New for an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

var errNoHeaders = errors.New("dataset has no headers")

// Dataset is a titled table. Every row has one value per header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Append adds a row, padding or truncating values to the header count.
func (d *Dataset) Append(values ...string) {
	row := make([]string, len(d.Headers))
	copy(row, values)
	d.Rows = append(d.Rows, row)
}

func (d Dataset) cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// Renderer encodes a dataset in one document format.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// New returns the renderer for format, matched case-insensitively.
func New(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return CSV{}, nil
	case FormatPDF:
		return PDF{}, nil
	case FormatXLSX:
		return XLSX{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
