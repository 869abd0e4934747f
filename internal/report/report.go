// Package report exports the factory numbers written during a console run as
// an XLSX shift report.
package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/imamik/apmconsole/internal/provisioning"
)

const (
	summarySheet = "summary"
	numbersSheet = "numbers"
)

var numberColumns = []string{
	"Time", "Operator", "Order number", "Order year", "Order id", "Decimal number", "Factory number",
}

// Build renders records as an XLSX workbook.
func Build(records []provisioning.Record, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(numbersSheet); err != nil {
		return nil, err
	}

	operators := map[string]bool{}
	for _, r := range records {
		operators[r.Operator] = true
	}

	_ = f.SetCellValue(summarySheet, "A1", "Factory number shift report")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generated.Format(time.DateTime))
	_ = f.SetCellValue(summarySheet, "A4", "Written")
	_ = f.SetCellValue(summarySheet, "B4", len(records))
	_ = f.SetCellValue(summarySheet, "A5", "Operators")
	_ = f.SetCellValue(summarySheet, "B5", len(operators))

	for i, title := range numberColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(numbersSheet, cell, title)
	}
	for i, r := range records {
		row := i + 2
		values := []any{
			r.Time.Format(time.DateTime),
			r.Operator,
			r.OrderNumber,
			r.OrderYear,
			string(r.OrderID),
			r.DecimalNumber,
			r.FactoryNumber,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(numbersSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile builds the report and writes it to path.
func WriteFile(path string, records []provisioning.Record, generated time.Time) error {
	data, err := Build(records, generated)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
