// Package audit exports database snapshots to Excel workbooks and trims aged
// status log rows.
package audit

import (
	"context"
	"fmt"
	"io"
	"time"
)

// TableExporter provides access to database tables for export.
type TableExporter interface {
	// GetTableNames returns list of table names to export.
	GetTableNames(ctx context.Context) ([]string, error)

	// GetTableData returns rows for a table as maps.
	GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error)
}

// ExcelWriter writes data to Excel format.
type ExcelWriter interface {
	// AddSheet adds a new sheet with the given name.
	AddSheet(name string) error

	// WriteHeader writes column headers to current sheet.
	WriteHeader(columns []string) error

	// WriteRow writes a data row to current sheet.
	WriteRow(row []interface{}) error

	// Save writes the Excel file to the writer.
	Save(w io.Writer) error

	// SaveToFile writes the Excel file to disk.
	SaveToFile(path string) error
}

// LogCleaner trims aged status log rows.
type LogCleaner interface {
	DeleteOldStatusLogs(ctx context.Context, olderThan time.Duration) (int64, error)
}

// GenerateFilename creates a filename like "availability_2026-01.xlsx".
func GenerateFilename(t time.Time) string {
	return fmt.Sprintf("availability_%s.xlsx", t.Format("2006-01"))
}

// GenerateFilenameForPreviousMonth creates filename for the previous month.
func GenerateFilenameForPreviousMonth() string {
	return GenerateFilename(time.Now().AddDate(0, -1, 0))
}
