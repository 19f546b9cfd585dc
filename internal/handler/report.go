package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
)

type reportService interface {
	Revenue(ctx context.Context, startDate, endDate string) (*model.RevenueReport, error)
	Usage(ctx context.Context, startDate, endDate string) (*model.UsageReport, error)
}

type ReportHandler struct {
	reports reportService
}

func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	r.Get("/revenue", h.Revenue)
	r.Get("/usage", h.Usage)

	return r
}

// GET /v1/reports/revenue?start_date=&end_date=
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.reports.Revenue(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /v1/reports/usage?start_date=&end_date=
func (h *ReportHandler) Usage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.reports.Usage(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
