package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gamehub/station-server-go/internal/audit"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/httputil"
	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/util"
)

type sessionService interface {
	Open(ctx context.Context, playerID, stationID string) (*model.Session, error)
	Close(ctx context.Context, id string) (*model.Session, error)
	Get(ctx context.Context, actor model.Actor, id string) (*model.Session, error)
	List(ctx context.Context, actor model.Actor, filter model.SessionFilter) ([]model.Session, error)
}

type SessionHandler struct {
	sessions sessionService
	loc      *time.Location
}

// NewSessionHandler serves sessions. loc decides which day the date filter selects.
func NewSessionHandler(sessions sessionService, loc *time.Location) *SessionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SessionHandler{sessions: sessions, loc: loc}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
		r.Post("/", h.Open)
		r.Put("/{id}/end", h.Close)
	})

	return r
}

// GET /v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := ParsePagination(r)
	filter := model.SessionFilter{Limit: page.Limit, Offset: page.Offset}

	query := r.URL.Query()
	if playerID := query.Get("player_id"); playerID != "" {
		if !util.IsValidUUID(playerID) {
			writeError(w, r, apperrors.InvalidInput("player_id", "must be a UUID"))
			return
		}
		filter.PlayerID = &playerID
	}
	if date := query.Get("date"); date != "" {
		day, err := util.ParseDate(date, h.loc)
		if err != nil {
			writeError(w, r, apperrors.InvalidInput("date", "must be YYYY-MM-DD"))
			return
		}
		from, before := util.DayBounds(day, h.loc)
		filter.StartedFrom = &from
		filter.StartedBefore = &before
	}

	sessions, err := h.sessions.List(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Session")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.sessions.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// POST /v1/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		PlayerID  string `json:"player_id"`
		StationID string `json:"station_id"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	fields := map[string]string{}
	if req.PlayerID == "" {
		fields["player_id"] = "is required"
	} else if !util.IsValidUUID(req.PlayerID) {
		fields["player_id"] = "must be a UUID"
	}
	if req.StationID == "" {
		fields["station_id"] = "is required"
	} else if !util.IsValidUUID(req.StationID) {
		fields["station_id"] = "must be a UUID"
	}
	if len(fields) > 0 {
		writeError(w, r, apperrors.FieldErrors(fields))
		return
	}

	session, err := h.sessions.Open(r.Context(), req.PlayerID, req.StationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventSessionOpen,
		UserID:   actor.UserID,
		TargetID: session.ID,
		Details:  map[string]interface{}{"playerId": req.PlayerID, "stationId": req.StationID},
	})
	writeJSON(w, http.StatusCreated, session)
}

// PUT /v1/sessions/{id}/end
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "Session")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.sessions.Close(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	details := map[string]interface{}{}
	if session.Duration != nil {
		details["duration"] = *session.Duration
	}
	if session.Cost.Valid {
		details["cost"] = session.Cost.Decimal.StringFixed(2)
	}
	audit.LogFromRequest(r, audit.Event{Type: audit.EventSessionClose, UserID: actor.UserID, TargetID: id, Details: details})
	writeJSON(w, http.StatusOK, session)
}
