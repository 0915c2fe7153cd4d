package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetNameLimit is the hard cap Excel puts on sheet names.
const sheetNameLimit = 31

// xlsxWriter implements ExcelWriter on an excelize workbook, tracking the
// active sheet and next row.
type xlsxWriter struct {
	file  *excelize.File
	sheet string
	row   int
}

// NewExcelizeWriter creates an empty workbook.
func NewExcelizeWriter() ExcelWriter {
	return &xlsxWriter{file: excelize.NewFile()}
}

// AddSheet starts a new sheet and makes it the write target. The first sheet
// replaces the workbook's default one.
func (w *xlsxWriter) AddSheet(name string) error {
	if len(name) > sheetNameLimit {
		name = name[:sheetNameLimit]
	}

	if w.sheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	return nil
}

// WriteHeader writes a bold column-name row on the active sheet.
func (w *xlsxWriter) WriteHeader(columns []string) error {
	if w.sheet == "" {
		return fmt.Errorf("add a sheet before writing")
	}

	headerRow := w.row
	cells := make([]interface{}, len(columns))
	for i, col := range columns {
		cells[i] = col
	}
	if err := w.writeCells(cells); err != nil {
		return err
	}

	if style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
		_ = w.file.SetCellStyle(w.sheet, first, last, style)
	}
	return nil
}

// WriteRow writes one data row on the active sheet.
func (w *xlsxWriter) WriteRow(row []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("add a sheet before writing")
	}
	return w.writeCells(row)
}

func (w *xlsxWriter) writeCells(values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

// Save streams the workbook.
func (w *xlsxWriter) Save(out io.Writer) error {
	return w.file.Write(out)
}

// SaveToFile writes the workbook to disk.
func (w *xlsxWriter) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}
