package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"fintrack/internal/report"
	"fintrack/internal/services"
)

// ReportPDF renders a one-page statement: period totals, the category
// breakdown table, and the derived insights.
func ReportPDF(res services.ReportResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Fintrack Report", false)
	pdf.AddPage()
	// Core fonts are cp1252; the translator keeps the euro sign intact.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Fintrack Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", intervalLabel(res)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Income: %s", res.Current.Totals.Income)))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Expenses: %s", res.Current.Totals.Expense)))
	pdf.Ln(10)

	if len(res.Current.CategoryBreakdown) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Category Breakdown")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(70, 7, "Category")
		pdf.Cell(50, 7, "Amount")
		pdf.Cell(30, 7, "%")
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 11)
		total := res.Current.Totals.Expense.Cents
		for _, cat := range res.Current.CategoryBreakdown {
			pdf.Cell(70, 7, tr(cat.Category))
			pdf.Cell(50, 7, tr(cat.Amount.String()))
			pdf.Cell(30, 7, fmt.Sprintf("%.1f%%", report.Percent(cat.Amount.Cents, total)))
			pdf.Ln(7)
		}
		pdf.Ln(3)
	}

	if len(res.Insights) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Insights")
		pdf.Ln(8)

		for _, in := range res.Insights {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 7, tr(fmt.Sprintf("%s (%s)", in.Title, in.Kind)))
			pdf.Ln(7)
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(in.Message), "", "L", false)
			if in.Suggestion != "" {
				pdf.MultiCell(0, 6, tr(in.Suggestion), "", "L", false)
			}
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
