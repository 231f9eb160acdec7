package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/docstudio/pkg/utils"
)

const sheetSeparator = "=================================================="

func extractExcel(content []byte, previewRows int) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&b, "Sheet: %s\n", sheet)
		writeTable(&b, rows, "Data:", previewRows)
		b.WriteString("\n" + sheetSeparator + "\n\n")
	}
	return b.String(), nil
}

func extractCSV(content []byte, previewRows int) (string, error) {
	r := csv.NewReader(strings.NewReader(decodeText(content)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse CSV: %w", err)
	}
	var b strings.Builder
	writeTable(&b, rows, "Data Preview:", previewRows)
	return b.String(), nil
}

// writeTable renders a header row, up to previewRows data rows and statistics for
// numeric columns. The first row is taken as the header.
func writeTable(b *strings.Builder, rows [][]string, dataLabel string, previewRows int) {
	if len(rows) == 0 {
		return
	}
	header := rows[0]
	data := rows[1:]
	b.WriteString("Columns: " + strings.Join(header, ", ") + "\n")
	if len(data) == 0 {
		return
	}
	b.WriteString(dataLabel + "\n")
	b.WriteString(strings.Join(header, " | ") + "\n")
	for i, row := range data {
		if i >= previewRows {
			break
		}
		b.WriteString(strings.Join(row, " | ") + "\n")
	}

	stats := numericColumns(header, data)
	if len(stats) == 0 {
		return
	}
	b.WriteString("Summary Statistics:\n")
	for _, s := range stats {
		fmt.Fprintf(b, "%s: count=%d mean=%s min=%s max=%s\n",
			s.name, s.Count, formatNumber(s.Mean), formatNumber(s.Min), formatNumber(s.Max))
	}
}

type columnStats struct {
	name string
	utils.NumericSummary
}

// numericColumns returns statistics for every column whose non-empty cells all parse as numbers.
func numericColumns(header []string, data [][]string) []columnStats {
	var out []columnStats
	for col, name := range header {
		var values []float64
		numeric := true
		for _, row := range data {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				numeric = false
				break
			}
			values = append(values, v)
		}
		if numeric && len(values) > 0 {
			out = append(out, columnStats{name: name, NumericSummary: utils.Summarize(values)})
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SheetCSV renders the first sheet of an xlsx workbook, or a CSV file as-is, as CSV text.
func SheetCSV(name string, content []byte) (string, error) {
	format, err := DetectFormat(name, "")
	if err != nil {
		return "", err
	}
	switch format {
	case FormatCSV:
		return decodeText(content), nil
	case FormatXLSX, FormatXLS:
	default:
		return "", &UnsupportedFormatError{Name: name}
	}
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", &ExtractionError{Format: format, Name: name, Err: err}
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", &ExtractionError{Format: format, Name: name, Err: err}
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return buf.String(), nil
}
