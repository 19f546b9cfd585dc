package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gamehub/station-server-go/internal/audit"
	"github.com/gamehub/station-server-go/internal/httputil"
	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
)

type rateService interface {
	CurrentRates(ctx context.Context) (map[model.RateCategory]decimal.Decimal, error)
	List(ctx context.Context, category *model.RateCategory) ([]model.RateSetting, error)
	Get(ctx context.Context, id string) (*model.RateSetting, error)
	Create(ctx context.Context, actor model.Actor, input model.RateInput) (*model.RateSetting, error)
	Update(ctx context.Context, id string, input model.RateInput) (*model.RateSetting, error)
	Deactivate(ctx context.Context, id string) error
}

type RateHandler struct {
	rates rateService
}

func NewRateHandler(rates rateService) *RateHandler {
	return &RateHandler{rates: rates}
}

func (h *RateHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/current", h.Current)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
	})
	r.With(middleware.RequireRole(model.RoleAdmin)).Delete("/{id}", h.Deactivate)

	return r
}

// GET /v1/rates
func (h *RateHandler) List(w http.ResponseWriter, r *http.Request) {
	var category *model.RateCategory
	if v := r.URL.Query().Get("station_type"); v != "" {
		c := model.RateCategory(v)
		category = &c
	}

	rates, err := h.rates.List(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// GET /v1/rates/current
func (h *RateHandler) Current(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.CurrentRates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// GET /v1/rates/{id}
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Rate setting")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rate, err := h.rates.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

// POST /v1/rates
func (h *RateHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input model.RateInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	rate, err := h.rates.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventRateCreate,
		UserID:   actor.UserID,
		TargetID: rate.ID,
		Details: map[string]interface{}{
			"stationType": string(rate.StationType),
			"hourlyRate":  rate.HourlyRate.StringFixed(2),
		},
	})
	writeJSON(w, http.StatusCreated, rate)
}

// PUT /v1/rates/{id}
func (h *RateHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Rate setting")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input model.RateInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	rate, err := h.rates.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventRateUpdate,
		UserID:   actor.UserID,
		TargetID: id,
		Details:  map[string]interface{}{"hourlyRate": rate.HourlyRate.StringFixed(2), "isActive": rate.IsActive},
	})
	writeJSON(w, http.StatusOK, rate)
}

// DELETE /v1/rates/{id}
func (h *RateHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Rate setting")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.rates.Deactivate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventRateDeactivate, UserID: actor.UserID, TargetID: id})
	w.WriteHeader(http.StatusNoContent)
}
