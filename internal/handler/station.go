package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamehub/station-server-go/internal/audit"
	"github.com/gamehub/station-server-go/internal/httputil"
	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
)

type stationService interface {
	List(ctx context.Context) ([]model.StationView, error)
	Get(ctx context.Context, id string) (*model.StationView, error)
	Create(ctx context.Context, params model.CreateStationParams) (*model.Station, error)
	Update(ctx context.Context, id string, patch model.StationPatch) (*model.Station, error)
	Delete(ctx context.Context, id string) error
}

type StationHandler struct {
	stations stationService
}

func NewStationHandler(stations stationService) *StationHandler {
	return &StationHandler{stations: stations}
}

func (h *StationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
	})
	r.With(middleware.RequireRole(model.RoleAdmin)).Delete("/{id}", h.Delete)

	return r
}

// GET /v1/stations
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// GET /v1/stations/{id}
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Station")
	if err != nil {
		writeError(w, r, err)
		return
	}

	station, err := h.stations.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// POST /v1/stations
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req model.CreateStationParams
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	station, err := h.stations.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventStationCreate,
		UserID:   actor.UserID,
		TargetID: station.ID,
		Details:  map[string]interface{}{"type": string(station.Type)},
	})
	writeJSON(w, http.StatusCreated, station)
}

// PUT /v1/stations/{id}
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Station")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var patch model.StationPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	station, err := h.stations.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventStationUpdate,
		UserID:   actor.UserID,
		TargetID: id,
		Details:  map[string]interface{}{"status": string(station.Status)},
	})
	writeJSON(w, http.StatusOK, station)
}

// DELETE /v1/stations/{id}
func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Station")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.stations.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventStationDelete, UserID: actor.UserID, TargetID: id})
	w.WriteHeader(http.StatusNoContent)
}
