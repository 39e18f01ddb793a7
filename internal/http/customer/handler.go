package customer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *customer.Service
}

func NewHandler(svc *customer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type addressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode" validate:"omitempty,numeric,len=6"`
	Country string `json:"country"`
}

type bankDTO struct {
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc" validate:"omitempty,len=11"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
}

type createCustomerRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	CompanyName string     `json:"company_name" validate:"max=200"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone" validate:"max=20"`
	GSTIN       string     `json:"gstin" validate:"omitempty,len=15"`
	Address     addressDTO `json:"address"`
	Bank        bankDTO    `json:"bank_details"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), customer.CreateParams{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		GSTIN:       req.GSTIN,
		Address:     customer.Address(req.Address),
		Bank:        customer.BankDetails(req.Bank),
		CreatedBy:   respond.Principal(r).UserID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

type importResponse struct {
	Imported  int                `json:"imported"`
	Charset   string             `json:"charset"`
	Customers []customerResponse `json:"customers"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, apperr.Invalid("file", "failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Invalid("file", "is required"))
		return
	}
	defer file.Close()

	parsed, err := importer.ParseCustomers(file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	owner := respond.Principal(r).UserID
	for i := range parsed.Customers {
		parsed.Customers[i].CreatedBy = owner
	}

	created, err := h.svc.Import(r.Context(), parsed.Customers)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "customers imported", "count", len(created), "charset", parsed.Charset)

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported:  len(created),
		Charset:   parsed.Charset,
		Customers: toResponseList(created),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context(), customer.ListFilter{
		CreatedBy: respond.Principal(r).Owner(),
		Search:    r.URL.Query().Get("search"),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(customers))
}

func (h *Handler) load(r *http.Request) (*customer.Customer, error) {
	id, err := respond.ID(r, "id")
	if err != nil {
		return nil, err
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !respond.Principal(r).CanView(c.CreatedBy) {
		return nil, apperr.Forbidden("view customer")
	}

	return c, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type updateCustomerRequest struct {
	Name        *string     `json:"name" validate:"omitempty,max=200"`
	CompanyName *string     `json:"company_name" validate:"omitempty,max=200"`
	Email       *string     `json:"email" validate:"omitempty,email"`
	Phone       *string     `json:"phone" validate:"omitempty,max=20"`
	GSTIN       *string     `json:"gstin" validate:"omitempty,len=15"`
	Address     *addressDTO `json:"address"`
	Bank        *bankDTO    `json:"bank_details"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(c.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("update customer"))
		return
	}

	var req updateCustomerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := customer.UpdateParams{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		GSTIN:       req.GSTIN,
	}

	if req.Address != nil {
		params.Address = new(customer.Address(*req.Address))
	}

	if req.Bank != nil {
		params.Bank = new(customer.BankDetails(*req.Bank))
	}

	updated, err := h.svc.Update(r.Context(), c.ID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(c.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("delete customer"))
		return
	}

	if err := h.svc.Delete(r.Context(), c.ID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
