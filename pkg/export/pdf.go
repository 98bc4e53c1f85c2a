package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfRowHeight  = 7.0
	pdfHeadHeight = 8.0
)

// PDF renders an A4 table. Wide tables switch to landscape, the header row
// repeats on every page and pages are numbered in the footer. Text is
// translated to cp1252 for the core fonts.
type PDF struct{}

// ContentType implements Renderer.
func (PDF) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (PDF) Extension() string { return FormatPDF }

// Render implements Renderer.
func (PDF) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf: %w", errNoHeaders)
	}

	orientation := "P"
	if len(data.Headers) > 4 {
		orientation = "L"
	}
	doc := gofpdf.New(orientation, "mm", "A4", "")
	doc.SetMargins(pdfMargin, 15, pdfMargin)
	doc.SetAutoPageBreak(true, 15)
	doc.AliasNbPages("")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := doc.GetPageSize()
	colWidth := (pageWidth - 2*pdfMargin) / float64(len(data.Headers))

	header := func() {
		doc.SetFont("Arial", "B", 10)
		doc.SetFillColor(230, 243, 255)
		for _, h := range data.Headers {
			doc.CellFormat(colWidth, pdfHeadHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Arial", "", 9)
	}
	first := true
	doc.SetHeaderFunc(func() {
		if first {
			first = false
			return
		}
		header()
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("%d / {nb}", doc.PageNo()), "", 0, "R", false, 0, "")
	})

	doc.AddPage()
	if data.Title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		doc.Ln(4)
	}
	header()

	for _, row := range data.Rows {
		for col := range data.Headers {
			text := tr(data.cell(row, col))
			doc.CellFormat(colWidth, pdfRowHeight, fit(doc, text, colWidth-2), "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// fit shortens translated single byte text with an ellipsis until it fits width.
func fit(doc *gofpdf.Fpdf, text string, width float64) string {
	if doc.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && doc.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
