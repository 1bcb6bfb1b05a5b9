package tableview

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNothingToExport marks an export with no columns or no rows. The caller
// refuses the request instead of producing an empty download.
var ErrNothingToExport = errors.New("nothing to export")

// BuildCSV serializes rows under the projected columns: one header row from
// the renderer headers, then one line per row via CSVValue. Quoting follows
// RFC 4180 (cells with commas, quotes or newlines are quoted, inner quotes
// doubled) and is applied here regardless of what CSVValue returned.
func BuildCSV(columns []ProjectedColumn, rows []Row) (string, error) {
	if len(columns) == 0 || len(rows) == 0 {
		return "", ErrNothingToExport
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	header := make([]string, 0, len(columns))
	for _, column := range columns {
		header = append(header, column.Renderer.Header)
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			record[i] = column.Renderer.CSVValue(row)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return buf.String(), nil
}

// ExportFilename builds the download name, e.g. "validation_requests_2026-08-30.csv".
func ExportFilename(prefix string, now time.Time) string {
	cleaned := strings.TrimSpace(prefix)
	if cleaned == "" {
		cleaned = "export"
	}
	return fmt.Sprintf("%s_%s.csv", cleaned, now.UTC().Format("2006-01-02"))
}
