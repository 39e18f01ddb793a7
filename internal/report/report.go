// Package report aggregates invoices and payments into dashboard and GST summaries.
package report

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
	"github.com/billbook/billbook/internal/project"
)

var hundred = decimal.NewFromInt(100)

// Summary is the bookkeeping position over a set of invoices and payments.
type Summary struct {
	TotalInvoices   int                                       `json:"total_invoices"`
	TotalBilled     decimal.Decimal                           `json:"total_billed"`
	TotalGST        decimal.Decimal                           `json:"total_gst"`
	TotalPaid       decimal.Decimal                           `json:"total_paid"`
	Outstanding     decimal.Decimal                           `json:"outstanding"`
	CountsByStatus  map[invoice.PaymentStatus]int             `json:"counts_by_status"`
	CountsByType    map[invoice.Type]int                      `json:"counts_by_type"`
	AmountsByStatus map[invoice.PaymentStatus]decimal.Decimal `json:"amounts_by_status"`
	AmountsByType   map[invoice.Type]decimal.Decimal          `json:"amounts_by_type"`
	// CollectionRate is TotalPaid as a percentage of TotalBilled, 0 when nothing is billed.
	CollectionRate decimal.Decimal `json:"collection_rate"`
}

var (
	statuses = []invoice.PaymentStatus{invoice.StatusUnpaid, invoice.StatusPartiallyPaid, invoice.StatusPaid}
	types    = []invoice.Type{invoice.TypeProforma, invoice.TypeTaxInvoice, invoice.TypeNonTaxInvoice}
)

// Aggregate folds invoices and payments into a Summary. Every known status and
// type is present in the maps, with zero values when absent from the input.
func Aggregate(invoices []*invoice.Invoice, payments []*payment.Payment) Summary {
	s := Summary{
		TotalInvoices:   len(invoices),
		TotalBilled:     decimal.Zero,
		TotalGST:        decimal.Zero,
		TotalPaid:       decimal.Zero,
		CountsByStatus:  make(map[invoice.PaymentStatus]int, len(statuses)),
		CountsByType:    make(map[invoice.Type]int, len(types)),
		AmountsByStatus: make(map[invoice.PaymentStatus]decimal.Decimal, len(statuses)),
		AmountsByType:   make(map[invoice.Type]decimal.Decimal, len(types)),
		CollectionRate:  decimal.Zero,
	}

	for _, st := range statuses {
		s.CountsByStatus[st] = 0
		s.AmountsByStatus[st] = decimal.Zero
	}

	for _, t := range types {
		s.CountsByType[t] = 0
		s.AmountsByType[t] = decimal.Zero
	}

	for _, inv := range invoices {
		s.TotalBilled = s.TotalBilled.Add(inv.Total)
		s.TotalGST = s.TotalGST.Add(inv.GST())

		s.CountsByStatus[inv.PaymentStatus]++
		s.AmountsByStatus[inv.PaymentStatus] = s.AmountsByStatus[inv.PaymentStatus].Add(inv.Total)

		s.CountsByType[inv.Type]++
		s.AmountsByType[inv.Type] = s.AmountsByType[inv.Type].Add(inv.Total)
	}

	for _, p := range payments {
		s.TotalPaid = s.TotalPaid.Add(p.Amount)
	}

	s.Outstanding = s.TotalBilled.Sub(s.TotalPaid)

	if s.TotalBilled.IsPositive() {
		s.CollectionRate = s.TotalPaid.Mul(hundred).Div(s.TotalBilled).Round(2)
	}

	return s
}

// GSTRow is one tax invoice in the GST report.
type GSTRow struct {
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Number       string          `json:"number"`
	Date         time.Time       `json:"date"`
	CustomerName string          `json:"customer_name"`
	GSTIN        string          `json:"gstin"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	TotalGST     decimal.Decimal `json:"total_gst"`
	Total        decimal.Decimal `json:"total"`
}

// GSTReport totals GST charged on tax invoices, oldest first.
type GSTReport struct {
	Rows              []GSTRow        `json:"rows"`
	TotalTaxableValue decimal.Decimal `json:"total_taxable_value"`
	TotalCGST         decimal.Decimal `json:"total_cgst"`
	TotalSGST         decimal.Decimal `json:"total_sgst"`
	TotalIGST         decimal.Decimal `json:"total_igst"`
	TotalGST          decimal.Decimal `json:"total_gst"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

const unknownParty = "N/A"

// GSTSummary keeps only tax invoices that carry GST. Customers supply the
// name and GSTIN columns; missing customers print as N/A.
func GSTSummary(invoices []*invoice.Invoice, customers map[uuid.UUID]*customer.Customer) GSTReport {
	r := GSTReport{
		Rows:              []GSTRow{},
		TotalTaxableValue: decimal.Zero,
		TotalCGST:         decimal.Zero,
		TotalSGST:         decimal.Zero,
		TotalIGST:         decimal.Zero,
		TotalGST:          decimal.Zero,
		GrandTotal:        decimal.Zero,
	}

	for _, inv := range invoices {
		if inv.Type != invoice.TypeTaxInvoice || !inv.GSTApplicable {
			continue
		}

		row := GSTRow{
			InvoiceID:    inv.ID,
			Number:       inv.Number,
			Date:         inv.Date,
			CustomerName: unknownParty,
			GSTIN:        unknownParty,
			TaxableValue: inv.Subtotal,
			CGST:         inv.CGST,
			SGST:         inv.SGST,
			IGST:         inv.IGST,
			TotalGST:     inv.GST(),
			Total:        inv.Total,
		}

		if c, ok := customers[inv.CustomerID]; ok {
			if name := firstNonEmpty(c.Name, c.CompanyName); name != "" {
				row.CustomerName = name
			}

			if c.GSTIN != "" {
				row.GSTIN = c.GSTIN
			}
		}

		r.Rows = append(r.Rows, row)
		r.TotalTaxableValue = r.TotalTaxableValue.Add(row.TaxableValue)
		r.TotalCGST = r.TotalCGST.Add(row.CGST)
		r.TotalSGST = r.TotalSGST.Add(row.SGST)
		r.TotalIGST = r.TotalIGST.Add(row.IGST)
		r.TotalGST = r.TotalGST.Add(row.TotalGST)
		r.GrandTotal = r.GrandTotal.Add(row.Total)
	}

	slices.SortStableFunc(r.Rows, func(a, b GSTRow) int { return a.Date.Compare(b.Date) })

	return r
}

// PartyReport is every invoice and payment of one customer or project.
type PartyReport struct {
	Customer *customer.Customer
	Project  *project.Project
	Invoices []*invoice.Invoice
	Payments []*payment.Payment
	Summary  Summary
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
