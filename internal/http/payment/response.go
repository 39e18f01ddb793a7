package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/payment"
)

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"payment_date"`
	Mode          payment.Mode    `json:"payment_mode"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ReceivedBy    uuid.UUID       `json:"received_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

type ledgerResponse struct {
	Payments     []paymentResponse `json:"payments"`
	InvoiceTotal decimal.Decimal   `json:"invoice_total"`
	TotalPaid    decimal.Decimal   `json:"total_paid"`
	Remaining    decimal.Decimal   `json:"remaining"`
}

func toResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Date:          p.Date,
		Mode:          p.Mode,
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		ReceivedBy:    p.ReceivedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toResponseList(ps []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}
