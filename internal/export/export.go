// Package export renders evaluated reports into downloadable formats.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"fintrack/internal/services"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Render produces the report in the requested format, returning the payload
// together with its content type and a suggested filename extension.
func Render(format string, res services.ReportResult) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		data, err := ReportCSV(res)
		return data, "text/csv; charset=utf-8", err
	case FormatJSON:
		data, err := ReportJSON(res)
		return data, "application/json; charset=utf-8", err
	case FormatPDF:
		data, err := ReportPDF(res)
		return data, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReportJSON marshals the full report payload, indented for humans.
func ReportJSON(res services.ReportResult) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// ReportCSV writes the report as sectioned CSV: totals first, then the
// category breakdown, then the sub-period buckets. Amounts are decimal
// currency units with a dot separator so spreadsheets parse them as numbers.
func ReportCSV(res services.ReportResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"section", "label", "income", "expense"},
		{"totals", intervalLabel(res), units(res.Current.Totals.Income.Cents), units(res.Current.Totals.Expense.Cents)},
	}
	for _, cat := range res.Current.CategoryBreakdown {
		rows = append(rows, []string{"category", cat.Category, "", units(cat.Amount.Cents)})
	}
	for _, b := range res.Current.SubPeriods {
		rows = append(rows, []string{"bucket", b.Label, units(b.Income.Cents), units(b.Expense.Cents)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func intervalLabel(res services.ReportResult) string {
	iv := res.Current.Interval
	return iv.Start.String() + " / " + iv.End.String()
}

func units(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100.0, 'f', 2, 64)
}
