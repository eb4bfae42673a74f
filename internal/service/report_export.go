package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// pdfMaxLineChars caps each exported record line; longer lines are
// truncated so a single row never wraps more than once.
const pdfMaxLineChars = 100

// ExportPDF renders a built report as a PDF document. Each record becomes
// one pipe-delimited line under the summary block.
func ExportPDF(report *SalesReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, report.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s", report.DateLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated At: %s", report.GeneratedAt.Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i := 0; i+1 < len(report.Tiles); i += 2 {
		pdf.CellFormat(95, 7, tileLine(report.Tiles[i]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, tileLine(report.Tiles[i+1]), "1", 1, "L", false, 0, "")
	}
	if len(report.Tiles)%2 == 1 {
		pdf.CellFormat(190, 7, tileLine(report.Tiles[len(report.Tiles)-1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Records", "", 1, "L", false, 0, "")

	if len(report.Rows) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, "No records found for this report range.", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Arial", "B", 9)
		pdf.MultiCell(0, 5, truncateLine(strings.Join(report.Columns, " | ")), "", "L", false)

		pdf.SetFont("Arial", "", 9)
		for _, row := range report.Rows {
			ensurePageSpace(pdf, 8)
			pdf.MultiCell(0, 5, truncateLine(strings.Join(row, " | ")), "", "L", false)
		}
	}

	if len(report.Weekly) > 0 {
		pdf.Ln(3)
		ensurePageSpace(pdf, 20)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Weekly Totals", "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, point := range report.Weekly {
			ensurePageSpace(pdf, 8)
			pdf.MultiCell(0, 5, fmt.Sprintf("Week of %s: %s", point.Period, FormatKES(point.Amount)), "", "L", false)
		}
	}

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buffer.Bytes(), nil
}

func ensurePageSpace(pdf *gofpdf.Fpdf, minSpace float64) {
	_, pageHeight := pdf.GetPageSize()
	leftMargin, _, rightMargin, bottomMargin := pdf.GetMargins()
	usableBottom := pageHeight - bottomMargin
	if pdf.GetY()+minSpace > usableBottom {
		pdf.AddPage()
		pdf.SetX(leftMargin)
		pdf.SetRightMargin(rightMargin)
	}
}

func tileLine(tile KPITile) string {
	return fmt.Sprintf("%s: %s", tile.Label, tile.Value)
}

func truncateLine(line string) string {
	if len(line) <= pdfMaxLineChars {
		return line
	}
	return line[:pdfMaxLineChars-3] + "..."
}
