package project

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/project"
)

type Handler struct {
	svc *project.Service
}

func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type projectResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	CustomerID  uuid.UUID      `json:"customer_id"`
	Description string         `json:"description,omitempty"`
	Status      project.Status `json:"status"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		CustomerID:  p.CustomerID,
		Description: p.Description,
		Status:      p.Status,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProjectRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	CustomerID  uuid.UUID      `json:"customer_id" validate:"required"`
	Description string         `json:"description" validate:"max=2000"`
	Status      project.Status `json:"status" validate:"omitempty,oneof=active completed on-hold"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), project.CreateParams{
		Name:        req.Name,
		CustomerID:  req.CustomerID,
		Description: req.Description,
		Status:      req.Status,
		CreatedBy:   respond.Principal(r).UserID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customerID, err := respond.QueryID(r, "customer")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	projects, err := h.svc.List(r.Context(), project.ListFilter{
		CreatedBy:  respond.Principal(r).Owner(),
		CustomerID: customerID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) load(r *http.Request) (*project.Project, error) {
	id, err := respond.ID(r, "id")
	if err != nil {
		return nil, err
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !respond.Principal(r).CanView(p.CreatedBy) {
		return nil, apperr.Forbidden("view project")
	}

	return p, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updateProjectRequest struct {
	Name        *string         `json:"name" validate:"omitempty,max=200"`
	CustomerID  *uuid.UUID      `json:"customer_id"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Status      *project.Status `json:"status" validate:"omitempty,oneof=active completed on-hold"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(p.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("update project"))
		return
	}

	var req updateProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), p.ID, project.UpdateParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.load(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.Principal(r).CanModify(p.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("delete project"))
		return
	}

	if err := h.svc.Delete(r.Context(), p.ID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
