package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the kind of invoice being issued.
type Type string

const (
	TypeProforma      Type = "proforma"
	TypeTaxInvoice    Type = "tax-invoice"
	TypeNonTaxInvoice Type = "non-tax-invoice"
)

// Valid reports whether t is a known invoice type.
func (t Type) Valid() bool {
	switch t {
	case TypeProforma, TypeTaxInvoice, TypeNonTaxInvoice:
		return true
	}

	return false
}

// PaymentStatus is derived from the payments recorded against an invoice.
type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "unpaid"
	StatusPartiallyPaid PaymentStatus = "partially-paid"
	StatusPaid          PaymentStatus = "paid"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid:
		return true
	}

	return false
}

// StatusFor derives the payment status of an invoice from what has been paid
// against it. Overpayment still counts as paid.
func StatusFor(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// LineItem is a billed line. It only exists inside its invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is a bill issued to a customer.
// Total always equals Subtotal + CGST + SGST + IGST.
type Invoice struct {
	ID             uuid.UUID
	Number         string
	Date           time.Time
	Type           Type
	CustomerID     uuid.UUID
	ProjectID      *uuid.UUID
	Items          []LineItem
	Subtotal       decimal.Decimal
	GSTApplicable  bool
	GSTRate        decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	Total          decimal.Decimal
	// IssuerState is the issuer's state the GST split was computed against.
	IssuerState    string
	TaxID          string
	GSTPaid        bool
	CompanyBankID  *uuid.UUID
	CustomerBankID *uuid.UUID
	Notes          string
	PaymentStatus  PaymentStatus
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// GST returns the total tax charged on the invoice.
func (inv *Invoice) GST() decimal.Decimal {
	return inv.CGST.Add(inv.SGST).Add(inv.IGST)
}

// applyTotals copies derived amounts onto the invoice.
func (inv *Invoice) applyTotals(t Totals) {
	inv.Items = t.Items
	inv.Subtotal = t.Subtotal
	inv.GSTApplicable = t.GSTApplicable
	inv.GSTRate = t.GSTRate
	inv.CGST = t.CGST
	inv.SGST = t.SGST
	inv.IGST = t.IGST
	inv.Total = t.Total
}
