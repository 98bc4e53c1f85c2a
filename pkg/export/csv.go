package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders RFC 4180 comma separated values with a header line. The title
// is not part of the output.
type CSV struct{}

// ContentType implements Renderer.
func (CSV) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (CSV) Extension() string { return FormatCSV }

// Render implements Renderer.
func (CSV) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv: %w", errNoHeaders)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	record := make([]string, len(data.Headers))
	for i, row := range data.Rows {
		for col := range record {
			record[col] = data.cell(row, col)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
