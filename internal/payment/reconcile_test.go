package payment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sum(amounts ...string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(dec(a))
	}

	return total
}

func TestReconcileStatus(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		payments []string
		want     invoice.PaymentStatus
	}{
		{name: "FullyPaidInTwo", total: "1000", payments: []string{"400", "600"}, want: invoice.StatusPaid},
		{name: "PartiallyPaid", total: "1000", payments: []string{"400"}, want: invoice.StatusPartiallyPaid},
		{name: "NoPayments", total: "1000", want: invoice.StatusUnpaid},
		{name: "Overpaid", total: "1000", payments: []string{"1200"}, want: invoice.StatusPaid},
		{name: "ExactSingle", total: "1180", payments: []string{"1180"}, want: invoice.StatusPaid},
		{name: "OnePaisaShort", total: "1180", payments: []string{"1179.99"}, want: invoice.StatusPartiallyPaid},
		{name: "ManySmall", total: "100", payments: []string{"33.33", "33.33", "33.34"}, want: invoice.StatusPaid},
		{name: "ZeroTotal", total: "0", want: invoice.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.ReconcileStatus(dec(tt.total), sum(tt.payments...)))
		})
	}
}

func TestReconcileStatus_Monotonic(t *testing.T) {
	total := dec("500")
	rank := map[invoice.PaymentStatus]int{
		invoice.StatusUnpaid:        0,
		invoice.StatusPartiallyPaid: 1,
		invoice.StatusPaid:          2,
	}

	prev := payment.ReconcileStatus(total, decimal.Zero)
	paid := decimal.Zero

	for range 60 {
		paid = paid.Add(dec("10"))
		next := payment.ReconcileStatus(total, paid)

		assert.GreaterOrEqual(t, rank[next], rank[prev], "paid %s", paid)
		prev = next
	}

	assert.Equal(t, invoice.StatusPaid, prev)
}

func TestBalance(t *testing.T) {
	assert.True(t, payment.Balance(dec("1180"), dec("400")).Equal(dec("780")))
	assert.True(t, payment.Balance(dec("1000"), dec("1200")).Equal(dec("-200")))
}

func TestModeValid(t *testing.T) {
	for _, m := range payment.Modes {
		assert.True(t, m.Valid(), m)
	}

	assert.False(t, payment.Mode("card").Valid())
	assert.False(t, payment.Mode("").Valid())
}
