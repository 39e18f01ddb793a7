package payment

import (
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/invoice"
)

// ReconcileStatus derives an invoice's payment status from the sum of its payments.
// A sum at or above the total is paid, overpayment included.
func ReconcileStatus(invoiceTotal, paidSum decimal.Decimal) invoice.PaymentStatus {
	return invoice.StatusFor(invoiceTotal, paidSum)
}

// Balance is what remains to be collected on an invoice. It is negative when overpaid.
func Balance(invoiceTotal, paidSum decimal.Decimal) decimal.Decimal {
	return invoiceTotal.Sub(paidSum)
}
