package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/payment"
)

type Handler struct {
	svc *payment.Service
}

func NewHandler(svc *payment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/invoice/{invoiceId}", h.forInvoice)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createPaymentRequest struct {
	InvoiceID     uuid.UUID       `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Date          *respond.Date   `json:"payment_date"`
	Mode          payment.Mode    `json:"payment_mode" validate:"required"`
	TransactionID string          `json:"transaction_id" validate:"max=128"`
	Notes         string          `json:"notes" validate:"max=2000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := payment.CreateParams{
		InvoiceID:     req.InvoiceID,
		Amount:        req.Amount,
		Mode:          req.Mode,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		ReceivedBy:    respond.Principal(r).UserID,
	}

	if d := req.Date.Ptr(); d != nil {
		params.Date = *d
	}

	p, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter = payment.ListFilter{ReceivedBy: respond.Principal(r).Owner()}
		err    error
	)

	if filter.InvoiceID, err = respond.QueryID(r, "invoice"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.StartDate, err = respond.QueryDate(r, "start_date", false); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.EndDate, err = respond.QueryDate(r, "end_date", true); err != nil {
		respond.Error(w, r, err)
		return
	}

	payments, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(payments))
}

func (h *Handler) forInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := respond.ID(r, "invoiceId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ref, err := h.svc.InvoiceRef(r.Context(), invoiceID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanView(ref.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("view payments of this invoice"))
		return
	}

	ledger, err := h.svc.ForInvoice(r.Context(), invoiceID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ledgerResponse{
		Payments:     toResponseList(ledger.Payments),
		InvoiceTotal: ledger.InvoiceTotal,
		TotalPaid:    ledger.TotalPaid,
		Remaining:    ledger.Remaining,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanView(p.ReceivedBy) {
		respond.Error(w, r, apperr.Forbidden("view payment"))
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updatePaymentRequest struct {
	InvoiceID     *uuid.UUID       `json:"invoice_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *respond.Date    `json:"payment_date"`
	Mode          *payment.Mode    `json:"payment_mode"`
	TransactionID *string          `json:"transaction_id" validate:"omitempty,max=128"`
	Notes         *string          `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updatePaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, payment.UpdateParams{
		InvoiceID:     req.InvoiceID,
		Amount:        req.Amount,
		Date:          req.Date.Ptr(),
		Mode:          req.Mode,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		Actor:         respond.Principal(r).UserID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id, respond.Principal(r).UserID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
