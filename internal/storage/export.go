package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/docstudio/internal/models"
)

// ExportFormat names a history export format.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat maps a user-supplied name to an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportJSON, ExportCSV, ExportXLSX:
		return f, nil
	case "":
		return ExportJSON, nil
	case "excel":
		return ExportXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type of an export in format f.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

const exportSheet = "History"

// Export writes recs to w in format f. CSV and XLSX use the CSV backend's column order.
func Export(w io.Writer, recs []*models.SummaryRecord, f ExportFormat) error {
	switch f {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if recs == nil {
			recs = []*models.SummaryRecord{}
		}
		return enc.Encode(recs)
	case ExportCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range recs {
			if err := cw.Write(recordRow(r)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case ExportXLSX:
		return exportXLSX(w, recs)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func exportXLSX(w io.Writer, recs []*models.SummaryRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for col, h := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}
	for i, r := range recs {
		values := []any{
			r.Filename, r.FileType, r.FileSizeKB, r.OriginalWordCount, r.Summary,
			r.SummaryWordCount, r.ModelUsed, r.SummaryLength, r.Date, r.ExtractedText,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
