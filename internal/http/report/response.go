package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
	"github.com/billbook/billbook/internal/report"
)

type customerRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name,omitempty"`
	GSTIN       string    `json:"gstin,omitempty"`
	State       string    `json:"state,omitempty"`
}

type projectRef struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CustomerID uuid.UUID `json:"customer_id"`
	Status     string    `json:"status"`
}

type invoiceRow struct {
	ID            uuid.UUID             `json:"id"`
	Number        string                `json:"invoice_id"`
	Date          time.Time             `json:"invoice_date"`
	Type          invoice.Type          `json:"invoice_type"`
	ProjectID     *uuid.UUID            `json:"project_id,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	GST           decimal.Decimal       `json:"gst"`
	Total         decimal.Decimal       `json:"total_amount"`
	PaymentStatus invoice.PaymentStatus `json:"payment_status"`
}

type paymentRow struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"payment_date"`
	Mode      payment.Mode    `json:"payment_mode"`
}

type partyResponse struct {
	Customer *customerRef   `json:"customer,omitempty"`
	Project  *projectRef    `json:"project,omitempty"`
	Invoices []invoiceRow   `json:"invoices"`
	Payments []paymentRow   `json:"payments"`
	Summary  report.Summary `json:"summary"`
}

func toPartyResponse(r *report.PartyReport) partyResponse {
	resp := partyResponse{
		Invoices: make([]invoiceRow, len(r.Invoices)),
		Payments: make([]paymentRow, len(r.Payments)),
		Summary:  r.Summary,
	}

	if c := r.Customer; c != nil {
		resp.Customer = &customerRef{
			ID:          c.ID,
			Name:        c.Name,
			CompanyName: c.CompanyName,
			GSTIN:       c.GSTIN,
			State:       c.Address.State,
		}
	}

	if p := r.Project; p != nil {
		resp.Project = &projectRef{
			ID:         p.ID,
			Name:       p.Name,
			CustomerID: p.CustomerID,
			Status:     string(p.Status),
		}
	}

	for i, inv := range r.Invoices {
		resp.Invoices[i] = invoiceRow{
			ID:            inv.ID,
			Number:        inv.Number,
			Date:          inv.Date,
			Type:          inv.Type,
			ProjectID:     inv.ProjectID,
			Subtotal:      inv.Subtotal,
			GST:           inv.GST(),
			Total:         inv.Total,
			PaymentStatus: inv.PaymentStatus,
		}
	}

	for i, p := range r.Payments {
		resp.Payments[i] = paymentRow{
			ID:        p.ID,
			InvoiceID: p.InvoiceID,
			Amount:    p.Amount,
			Date:      p.Date,
			Mode:      p.Mode,
		}
	}

	return resp
}
