package report_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/report"
)

func TestWriteGSTExcel(t *testing.T) {
	c := &customer.Customer{ID: uuid.New(), Name: "Asha Traders", GSTIN: "27ABCDE1234F1Z5"}

	r := report.GSTSummary([]*invoice.Invoice{
		taxInvoice(c.ID, day(2), "1000", "90", "90", "0"),
		taxInvoice(c.ID, day(9), "2000", "0", "0", "360"),
	}, map[uuid.UUID]*customer.Customer{c.ID: c})

	var buf bytes.Buffer
	require.NoError(t, report.WriteGSTExcel(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("GST Report")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{
		"Invoice ID", "Date", "Customer", "GSTIN", "Taxable Value",
		"CGST", "SGST", "IGST", "Total GST", "Total Amount",
	}, rows[0])
	assert.Equal(t, []string{
		"INV-2024-0402", "2024-04-02", "Asha Traders", "27ABCDE1234F1Z5", "1000",
		"90", "90", "0", "180", "1180",
	}, rows[1])
	assert.Equal(t, "2024-04-09", rows[2][1])
	assert.Equal(t, []string{"TOTAL", "", "", "", "3000", "90", "90", "360", "540", "3540"}, rows[3])
}

func TestWriteGSTExcel_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteGSTExcel(&buf, report.GSTSummary(nil, nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("GST Report")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TOTAL", rows[1][0])
}
