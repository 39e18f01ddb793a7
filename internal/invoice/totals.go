package invoice

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/gst"
)

// ItemInput is a line item as supplied by a caller. Nil fields are absent.
type ItemInput struct {
	Description string
	Quantity    *decimal.Decimal
	Rate        *decimal.Decimal
	Amount      *decimal.Decimal
}

// Totals holds every amount derived from the line items.
type Totals struct {
	Items         []LineItem
	Subtotal      decimal.Decimal
	GSTApplicable bool
	GSTRate       decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	Total         decimal.Decimal
}

// NormalizeItems validates caller items and fills in defaults.
// Quantity defaults to 1 when absent or zero. Amount defaults to quantity*rate
// when absent; a supplied amount is kept as-is so callers can apply discounts.
func NormalizeItems(inputs []ItemInput) ([]LineItem, error) {
	if len(inputs) == 0 {
		return nil, apperr.Invalid("items", "at least one item is required")
	}

	items := make([]LineItem, len(inputs))

	for i, in := range inputs {
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return nil, apperr.Invalid(itemField(i, "description"), "is required")
		}

		if in.Rate == nil {
			return nil, apperr.Invalid(itemField(i, "rate"), "is required")
		}

		if in.Rate.IsNegative() {
			return nil, apperr.Invalid(itemField(i, "rate"), "must not be negative")
		}

		qty := decimal.NewFromInt(1)
		if in.Quantity != nil {
			if in.Quantity.IsNegative() {
				return nil, apperr.Invalid(itemField(i, "quantity"), "must be positive")
			}

			if in.Quantity.IsPositive() {
				qty = *in.Quantity
			}
		}

		amount := qty.Mul(*in.Rate)
		if in.Amount != nil {
			if in.Amount.IsNegative() {
				return nil, apperr.Invalid(itemField(i, "amount"), "must not be negative")
			}

			amount = *in.Amount
		}

		items[i] = LineItem{
			Description: desc,
			Quantity:    qty,
			Rate:        *in.Rate,
			Amount:      amount,
		}
	}

	return items, nil
}

// BuildTotals derives subtotal and GST for a set of items.
// It is a pure function of its inputs.
func BuildTotals(inputs []ItemInput, t Type, requestedRate decimal.Decimal, customerState, issuerState string) (Totals, error) {
	if !t.Valid() {
		return Totals{}, apperr.Invalid("invoice_type", "unknown invoice type %q", t)
	}

	if requestedRate.IsNegative() {
		return Totals{}, apperr.Invalid("gst_rate", "must not be negative")
	}

	items, err := NormalizeItems(inputs)
	if err != nil {
		return Totals{}, err
	}

	return totalsFor(items, t, requestedRate, customerState, issuerState), nil
}

func totalsFor(items []LineItem, t Type, requestedRate decimal.Decimal, customerState, issuerState string) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	rate := gst.EffectiveRate(gst.InvoiceType(t), requestedRate)

	totals := Totals{
		Items:    items,
		Subtotal: subtotal,
		GSTRate:  rate,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
		IGST:     decimal.Zero,
		Total:    subtotal,
	}

	if !gst.Applicable(gst.InvoiceType(t), rate) {
		return totals
	}

	tax := gst.ComputeTax(subtotal, rate, customerState, issuerState)
	totals.GSTApplicable = true
	totals.CGST = tax.CGST
	totals.SGST = tax.SGST
	totals.IGST = tax.IGST
	totals.Total = subtotal.Add(tax.Tax())

	return totals
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
