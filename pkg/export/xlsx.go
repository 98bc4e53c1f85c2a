package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet  = "Report"
	maxSheetName  = 31
	minColWidth   = 10.0
	maxColWidth   = 60.0
	firstDataRow  = 2
	headerFillHex = "#E6F3FF"
)

// XLSX renders a single sheet workbook named after the title, with a styled
// frozen header row and columns sized to their content.
type XLSX struct{}

// ContentType implements Renderer.
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (XLSX) Extension() string { return FormatXLSX }

// Render implements Renderer.
func (XLSX) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx: %w", errNoHeaders)
	}
	sheet := sheetName(data.Title)

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{headerFillHex}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}

	widths := make([]float64, len(data.Headers))
	header := make([]interface{}, len(data.Headers))
	for col, h := range data.Headers {
		header[col] = h
		widths[col] = textWidth(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return nil, fmt.Errorf("xlsx header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}

	values := make([]interface{}, len(data.Headers))
	for i, row := range data.Rows {
		for col := range values {
			text := data.cell(row, col)
			values[col] = text
			if w := textWidth(text); w > widths[col] {
				widths[col] = w
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, firstDataRow+i)
		if err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("xlsx column: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return nil, fmt.Errorf("xlsx column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("xlsx freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName strips characters Excel forbids in sheet names and truncates to
// the 31 character limit.
func sheetName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	cleaned = strings.Trim(cleaned, "'")
	if cleaned == "" {
		return defaultSheet
	}
	if runes := []rune(cleaned); len(runes) > maxSheetName {
		cleaned = string(runes[:maxSheetName])
	}
	return cleaned
}

func textWidth(text string) float64 {
	w := float64(len([]rune(text))) + 2
	switch {
	case w < minColWidth:
		return minColWidth
	case w > maxColWidth:
		return maxColWidth
	}
	return w
}
