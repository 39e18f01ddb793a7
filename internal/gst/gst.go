// Package gst computes Indian Goods and Services Tax splits.
package gst

import "github.com/shopspring/decimal"

// InvoiceType mirrors the invoice kinds that decide whether GST applies.
type InvoiceType string

const (
	TypeProforma      InvoiceType = "proforma"
	TypeTaxInvoice    InvoiceType = "tax-invoice"
	TypeNonTaxInvoice InvoiceType = "non-tax-invoice"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the result of a GST computation. All values are rounded to 2 places.
type Breakdown struct {
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	IGST  decimal.Decimal
	Total decimal.Decimal
}

// Tax returns CGST + SGST + IGST.
func (b Breakdown) Tax() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.IGST)
}

// ComputeTax splits GST on a taxable amount.
// Different states produce IGST only; the same state (including both empty)
// produces equal CGST and SGST halves. Inputs are assumed to be non-negative.
func ComputeTax(amount, ratePercent decimal.Decimal, customerState, issuerState string) Breakdown {
	tax := amount.Mul(ratePercent).Div(hundred)

	if customerState != issuerState {
		return Breakdown{
			CGST:  decimal.Zero,
			SGST:  decimal.Zero,
			IGST:  round(tax),
			Total: round(amount.Add(tax)),
		}
	}

	half := tax.Div(decimal.NewFromInt(2))

	return Breakdown{
		CGST:  round(half),
		SGST:  round(half),
		IGST:  decimal.Zero,
		Total: round(amount.Add(tax)),
	}
}

// EffectiveRate returns the rate to charge for an invoice type.
// Proforma and non-tax invoices never carry GST.
func EffectiveRate(t InvoiceType, requested decimal.Decimal) decimal.Decimal {
	if t != TypeTaxInvoice {
		return decimal.Zero
	}

	return requested
}

// Applicable reports whether GST must be computed for the invoice.
func Applicable(t InvoiceType, effectiveRate decimal.Decimal) bool {
	return t == TypeTaxInvoice && effectiveRate.IsPositive()
}

// round rounds half away from zero, which is half-up for the non-negative amounts billed here.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
