package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const gstSheet = "GST Report"

var gstColumns = []struct {
	header string
	width  float64
}{
	{"Invoice ID", 15},
	{"Date", 12},
	{"Customer", 30},
	{"GSTIN", 20},
	{"Taxable Value", 15},
	{"CGST", 12},
	{"SGST", 12},
	{"IGST", 12},
	{"Total GST", 15},
	{"Total Amount", 15},
}

// WriteGSTExcel renders r as a single-sheet workbook with a trailing TOTAL row.
func WriteGSTExcel(w io.Writer, r GSTReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gstSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(gstColumns))

	for i, col := range gstColumns {
		header[i] = col.header

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(gstSheet, name, name, col.width); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRow(f, 1, header); err != nil {
		return err
	}

	if err := f.SetRowStyle(gstSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, row := range r.Rows {
		values := []any{
			row.Number,
			row.Date.Format(time.DateOnly),
			row.CustomerName,
			row.GSTIN,
			row.TaxableValue.InexactFloat64(),
			row.CGST.InexactFloat64(),
			row.SGST.InexactFloat64(),
			row.IGST.InexactFloat64(),
			row.TotalGST.InexactFloat64(),
			row.Total.InexactFloat64(),
		}

		if err := writeRow(f, i+2, values); err != nil {
			return err
		}
	}

	totalRow := len(r.Rows) + 2

	totals := []any{
		"TOTAL", "", "", "",
		r.TotalTaxableValue.InexactFloat64(),
		r.TotalCGST.InexactFloat64(),
		r.TotalSGST.InexactFloat64(),
		r.TotalIGST.InexactFloat64(),
		r.TotalGST.InexactFloat64(),
		r.GrandTotal.InexactFloat64(),
	}

	if err := writeRow(f, totalRow, totals); err != nil {
		return err
	}

	if err := f.SetRowStyle(gstSheet, totalRow, totalRow, bold); err != nil {
		return fmt.Errorf("styling totals: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(gstSheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}

	return nil
}
