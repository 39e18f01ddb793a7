package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/invoice"
)

type itemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type invoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         string                `json:"invoice_id"`
	Date           time.Time             `json:"invoice_date"`
	Type           invoice.Type          `json:"invoice_type"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	ProjectID      *uuid.UUID            `json:"project_id,omitempty"`
	Items          []itemResponse        `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	GSTApplicable  bool                  `json:"gst_applicable"`
	GSTRate        decimal.Decimal       `json:"gst_rate"`
	CGST           decimal.Decimal       `json:"cgst"`
	SGST           decimal.Decimal       `json:"sgst"`
	IGST           decimal.Decimal       `json:"igst"`
	Total          decimal.Decimal       `json:"total_amount"`
	IssuerState    string                `json:"issuer_state,omitempty"`
	TaxID          string                `json:"tax_id,omitempty"`
	GSTPaid        bool                  `json:"gst_paid"`
	CompanyBankID  *uuid.UUID            `json:"company_bank_id,omitempty"`
	CustomerBankID *uuid.UUID            `json:"customer_bank_id,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	PaymentStatus  invoice.PaymentStatus `json:"payment_status"`
	CreatedBy      uuid.UUID             `json:"created_by"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      *time.Time            `json:"updated_at,omitempty"`
}

type pageResponse struct {
	Invoices   []invoiceResponse `json:"invoices"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]itemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = itemResponse(it)
	}

	return invoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Date:           inv.Date,
		Type:           inv.Type,
		CustomerID:     inv.CustomerID,
		ProjectID:      inv.ProjectID,
		Items:          items,
		Subtotal:       inv.Subtotal,
		GSTApplicable:  inv.GSTApplicable,
		GSTRate:        inv.GSTRate,
		CGST:           inv.CGST,
		SGST:           inv.SGST,
		IGST:           inv.IGST,
		Total:          inv.Total,
		IssuerState:    inv.IssuerState,
		TaxID:          inv.TaxID,
		GSTPaid:        inv.GSTPaid,
		CompanyBankID:  inv.CompanyBankID,
		CustomerBankID: inv.CustomerBankID,
		Notes:          inv.Notes,
		PaymentStatus:  inv.PaymentStatus,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
