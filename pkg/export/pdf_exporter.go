package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0
	labelWidth  = 17.0
	cellHeight  = 9.0
	maxCellText = 26
)

// PDFExporter renders grids as a landscape table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a single-page PDF. Occupied cells are shaded.
func (e *PDFExporter) Render(grid Grid) ([]byte, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if grid.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(grid.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := (pageWidth - labelWidth) / float64(len(grid.Columns))

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(labelWidth, cellHeight, grid.Corner, "1", 0, "C", false, 0, "")
	for _, col := range grid.Columns {
		pdf.CellFormat(colWidth, cellHeight, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFillColor(220, 230, 245)
	for i, row := range grid.Cells {
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(labelWidth, cellHeight, grid.Labels[i], "1", 0, "C", false, 0, "")
		pdf.SetFont("Arial", "", 7)
		for _, cell := range row {
			pdf.CellFormat(colWidth, cellHeight, truncate(cell), "1", 0, "L", cell != "", 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellText {
		return s
	}
	return string(r[:maxCellText-1]) + "~"
}
