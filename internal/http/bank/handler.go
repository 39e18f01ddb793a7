package bank

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/bank"
	"github.com/billbook/billbook/internal/http/respond"
)

type Handler struct {
	svc *bank.Service
}

func NewHandler(svc *bank.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type accountResponse struct {
	ID                uuid.UUID        `json:"id"`
	AccountHolderName string           `json:"account_holder_name"`
	AccountNumber     string           `json:"account_number"`
	IFSC              string           `json:"ifsc"`
	BankName          string           `json:"bank_name"`
	Branch            string           `json:"branch,omitempty"`
	AccountType       bank.AccountType `json:"account_type"`
	IsDefault         bool             `json:"is_default"`
	IsCompanyAccount  bool             `json:"is_company_account"`
	CustomerID        *uuid.UUID       `json:"customer_id,omitempty"`
	CreatedBy         uuid.UUID        `json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(a *bank.Account) accountResponse {
	return accountResponse{
		ID:                a.ID,
		AccountHolderName: a.AccountHolderName,
		AccountNumber:     a.AccountNumber,
		IFSC:              a.IFSC,
		BankName:          a.BankName,
		Branch:            a.Branch,
		AccountType:       a.AccountType,
		IsDefault:         a.IsDefault,
		IsCompanyAccount:  a.IsCompanyAccount,
		CustomerID:        a.CustomerID,
		CreatedBy:         a.CreatedBy,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

type createAccountRequest struct {
	AccountHolderName string           `json:"account_holder_name" validate:"required"`
	AccountNumber     string           `json:"account_number" validate:"required,max=34"`
	IFSC              string           `json:"ifsc" validate:"required,len=11"`
	BankName          string           `json:"bank_name" validate:"required"`
	Branch            string           `json:"branch"`
	AccountType       bank.AccountType `json:"account_type" validate:"omitempty,oneof=savings current"`
	IsDefault         bool             `json:"is_default"`
	IsCompanyAccount  *bool            `json:"is_company_account"`
	CustomerID        *uuid.UUID       `json:"customer_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.Create(r.Context(), bank.CreateParams{
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSC:              req.IFSC,
		BankName:          req.BankName,
		Branch:            req.Branch,
		AccountType:       req.AccountType,
		IsDefault:         req.IsDefault,
		IsCompanyAccount:  req.IsCompanyAccount,
		CustomerID:        req.CustomerID,
		CreatedBy:         respond.Principal(r).UserID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := bank.ListFilter{CreatedBy: respond.Principal(r).Owner()}

	var err error

	if filter.IsCompanyAccount, err = respond.QueryBool(r, "is_company_account"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.CustomerID, err = respond.QueryID(r, "customer"); err != nil {
		respond.Error(w, r, err)
		return
	}

	accounts, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) load(r *http.Request) (*bank.Account, error) {
	id, err := respond.ID(r, "id")
	if err != nil {
		return nil, err
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !respond.Principal(r).CanView(a.CreatedBy) {
		return nil, apperr.Forbidden("view bank account")
	}

	return a, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

type updateAccountRequest struct {
	AccountHolderName *string           `json:"account_holder_name"`
	AccountNumber     *string           `json:"account_number" validate:"omitempty,max=34"`
	IFSC              *string           `json:"ifsc" validate:"omitempty,len=11"`
	BankName          *string           `json:"bank_name"`
	Branch            *string           `json:"branch"`
	AccountType       *bank.AccountType `json:"account_type" validate:"omitempty,oneof=savings current"`
	IsDefault         *bool             `json:"is_default"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(a.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("update bank account"))
		return
	}

	var req updateAccountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), a.ID, bank.UpdateParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(a.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("delete bank account"))
		return
	}

	if err := h.svc.Delete(r.Context(), a.ID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
