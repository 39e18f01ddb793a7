package report

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/gst", h.gst)
	r.Get("/customer/{id}", h.customer)
	r.Get("/project/{id}", h.project)
}

// ExportRoutes serves spreadsheet downloads. Mounted separately so they can be rate limited.
func (h *Handler) ExportRoutes(r chi.Router) {
	r.Get("/gst/export/excel", h.gstExcel)
}

func scope(r *http.Request) (report.Scope, error) {
	s := report.Scope{Owner: respond.Principal(r).Owner()}

	var err error

	if s.StartDate, err = respond.QueryDate(r, "start_date", false); err != nil {
		return report.Scope{}, err
	}

	if s.EndDate, err = respond.QueryDate(r, "end_date", true); err != nil {
		return report.Scope{}, err
	}

	return s, nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	s, err := scope(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summary, err := h.svc.Dashboard(r.Context(), s)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summary)
}

func (h *Handler) gst(w http.ResponseWriter, r *http.Request) {
	s, err := scope(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	gst, err := h.svc.GST(r.Context(), s)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, gst)
}

func (h *Handler) gstExcel(w http.ResponseWriter, r *http.Request) {
	s, err := scope(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	gst, err := h.svc.GST(r.Context(), s)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// Build in memory so a failed workbook still gets a JSON error.
	var buf bytes.Buffer
	if err := report.WriteGSTExcel(&buf, gst); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="gst-report.xlsx"`)
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write gst workbook", "error", err)
	}
}

func (h *Handler) customer(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p := respond.Principal(r)

	rep, err := h.svc.Customer(r.Context(), id, p.Owner())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !p.CanView(rep.Customer.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("view customer report"))
		return
	}

	respond.JSON(w, http.StatusOK, toPartyResponse(rep))
}

func (h *Handler) project(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p := respond.Principal(r)

	rep, err := h.svc.Project(r.Context(), id, p.Owner())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !p.CanView(rep.Project.CreatedBy) {
		respond.Error(w, r, apperr.Forbidden("view project report"))
		return
	}

	respond.JSON(w, http.StatusOK, toPartyResponse(rep))
}
