package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/bank"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/document"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/project"
)

type Handler struct {
	svc       *invoice.Service
	customers *customer.Service
	projects  *project.Service
	banks     *bank.Service
	renderer  *document.Renderer
	issuer    document.Issuer
}

func NewHandler(
	svc *invoice.Service,
	customers *customer.Service,
	projects *project.Service,
	banks *bank.Service,
	renderer *document.Renderer,
	issuer document.Issuer,
) *Handler {
	return &Handler{
		svc:       svc,
		customers: customers,
		projects:  projects,
		banks:     banks,
		renderer:  renderer,
		issuer:    issuer,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// PDFRoutes are mounted separately so they can be rate limited.
func (h *Handler) PDFRoutes(r chi.Router) {
	r.Get("/{id}/pdf", h.pdf)
}

type itemRequest struct {
	Description string           `json:"description" validate:"required"`
	Quantity    lenientDecimal   `json:"quantity"`
	Rate        *decimal.Decimal `json:"rate"`
	Amount      *decimal.Decimal `json:"amount"`
}

// lenientDecimal decodes any JSON value. Anything that is not a number is
// treated as absent, so the item default applies.
type lenientDecimal struct {
	value *decimal.Decimal
}

func (l *lenientDecimal) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil || string(b) == "null" {
		l.value = nil
		return nil
	}

	l.value = &d

	return nil
}

func toItemInputs(items []itemRequest) []invoice.ItemInput {
	if items == nil {
		return nil
	}

	out := make([]invoice.ItemInput, len(items))
	for i, it := range items {
		out[i] = invoice.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity.value,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}

	return out
}

type createInvoiceRequest struct {
	CustomerID     uuid.UUID        `json:"customer_id" validate:"required"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	Type           invoice.Type     `json:"invoice_type" validate:"required,oneof=proforma tax-invoice non-tax-invoice"`
	Date           *respond.Date    `json:"invoice_date"`
	Items          []itemRequest    `json:"items" validate:"required,min=1,dive"`
	GSTRate        *decimal.Decimal `json:"gst_rate"`
	TaxID          string           `json:"tax_id" validate:"max=64"`
	GSTPaid        bool             `json:"gst_paid"`
	CompanyBankID  *uuid.UUID       `json:"company_bank_id"`
	CustomerBankID *uuid.UUID       `json:"customer_bank_id"`
	Notes          string           `json:"notes" validate:"max=2000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p := respond.Principal(r)

	params := invoice.CreateParams{
		CustomerID:     req.CustomerID,
		ProjectID:      req.ProjectID,
		Type:           req.Type,
		Items:          toItemInputs(req.Items),
		GSTRate:        decimal.Zero,
		TaxID:          req.TaxID,
		GSTPaid:        req.GSTPaid,
		CompanyBankID:  req.CompanyBankID,
		CustomerBankID: req.CustomerBankID,
		Notes:          req.Notes,
		IssuerState:    p.State,
		CreatedBy:      p.UserID,
	}

	if req.GSTRate != nil {
		params.GSTRate = *req.GSTRate
	}

	if d := req.Date.Ptr(); d != nil {
		params.Date = *d
	}

	inv, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter.CreatedBy = respond.Principal(r).Owner()

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, pageResponse{
		Invoices:   toResponseList(page.Invoices),
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

func parseFilter(r *http.Request) (invoice.ListFilter, error) {
	var (
		filter invoice.ListFilter
		err    error
	)

	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		st := invoice.PaymentStatus(s)
		if !st.Valid() {
			return filter, apperr.Invalid("status", "unknown payment status %q", s)
		}

		filter.Status = &st
	}

	if s := q.Get("type"); s != "" {
		t := invoice.Type(s)
		if !t.Valid() {
			return filter, apperr.Invalid("type", "unknown invoice type %q", s)
		}

		filter.Type = &t
	}

	if filter.CustomerID, err = respond.QueryID(r, "customer"); err != nil {
		return filter, err
	}

	if filter.ProjectID, err = respond.QueryID(r, "project"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = respond.QueryDate(r, "start_date", false); err != nil {
		return filter, err
	}

	if filter.EndDate, err = respond.QueryDate(r, "end_date", true); err != nil {
		return filter, err
	}

	if filter.Page, err = respond.QueryInt(r, "page"); err != nil {
		return filter, err
	}

	if filter.Limit, err = respond.QueryInt(r, "limit"); err != nil {
		return filter, err
	}

	return filter, nil
}

// load fetches an invoice the caller may see.
func (h *Handler) load(r *http.Request) (*invoice.Invoice, error) {
	id, err := respond.ID(r, "id")
	if err != nil {
		return nil, err
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !respond.Principal(r).CanView(inv.CreatedBy) {
		return nil, apperr.Forbidden("view invoice " + inv.Number)
	}

	return inv, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type updateInvoiceRequest struct {
	CustomerID     *uuid.UUID       `json:"customer_id"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	Type           *invoice.Type    `json:"invoice_type" validate:"omitempty,oneof=proforma tax-invoice non-tax-invoice"`
	Date           *respond.Date    `json:"invoice_date"`
	Items          []itemRequest    `json:"items" validate:"omitempty,min=1,dive"`
	GSTRate        *decimal.Decimal `json:"gst_rate"`
	TaxID          *string          `json:"tax_id" validate:"omitempty,max=64"`
	GSTPaid        *bool            `json:"gst_paid"`
	CompanyBankID  *uuid.UUID       `json:"company_bank_id"`
	CustomerBankID *uuid.UUID       `json:"customer_bank_id"`
	Notes          *string          `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	inv, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p := respond.Principal(r)
	if !p.CanModify(inv.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("update invoice "+inv.Number))
		return
	}

	var req updateInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), inv.ID, invoice.UpdateParams{
		CustomerID:     req.CustomerID,
		ProjectID:      req.ProjectID,
		Type:           req.Type,
		Date:           req.Date.Ptr(),
		Items:          toItemInputs(req.Items),
		GSTRate:        req.GSTRate,
		TaxID:          req.TaxID,
		GSTPaid:        req.GSTPaid,
		CompanyBankID:  req.CompanyBankID,
		CustomerBankID: req.CustomerBankID,
		Notes:          req.Notes,
		IssuerState:    p.State,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	inv, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(inv.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("delete invoice "+inv.Number))
		return
	}

	if err := h.svc.Delete(r.Context(), inv.ID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	inv, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	doc, err := h.document(r, inv)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	pdf, err := h.renderer.PDF(r.Context(), doc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(document.Filename(inv)))
	_, _ = w.Write(pdf)
}

// document gathers the records printed alongside the invoice. Missing
// optional records are left out rather than failing the download.
func (h *Handler) document(r *http.Request, inv *invoice.Invoice) (document.InvoiceDocument, error) {
	ctx := r.Context()

	doc := document.InvoiceDocument{Issuer: h.issuer, Invoice: inv}
	if inv.IssuerState != "" {
		doc.Issuer.State = inv.IssuerState
	}

	c, err := h.customers.Get(ctx, inv.CustomerID)
	if err != nil && !isNotFound(err) {
		return doc, err
	}

	doc.Customer = c

	if inv.ProjectID != nil {
		if doc.Project, err = h.projects.Get(ctx, *inv.ProjectID); err != nil && !isNotFound(err) {
			return doc, err
		}
	}

	if inv.CompanyBankID != nil {
		if doc.CompanyBank, err = h.banks.Get(ctx, *inv.CompanyBankID); err != nil && !isNotFound(err) {
			return doc, err
		}
	}

	if inv.CustomerBankID != nil {
		if doc.CustomerBank, err = h.banks.Get(ctx, *inv.CustomerBankID); err != nil && !isNotFound(err) {
			return doc, err
		}
	}

	return doc, nil
}

func isNotFound(err error) bool {
	var nf *apperr.NotFoundError
	return errors.As(err, &nf)
}
