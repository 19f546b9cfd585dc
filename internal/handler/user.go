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

type userService interface {
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	Get(ctx context.Context, actor model.Actor, id string) (*model.User, error)
	Update(ctx context.Context, actor model.Actor, id string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(model.RoleAdmin)).Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.With(middleware.RequireRole(model.RoleAdmin)).Delete("/{id}", h.Delete)

	return r
}

// GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePagination(r)

	users, total, err := h.users.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":  users,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GET /v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "User")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// PUT /v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "User")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var patch model.UserPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	details := map[string]interface{}{}
	if patch.Role != nil {
		details["role"] = string(*patch.Role)
	}
	if patch.Password != nil {
		details["passwordChanged"] = true
	}
	audit.LogFromRequest(r, audit.Event{Type: audit.EventUserUpdate, UserID: actor.UserID, TargetID: id, Details: details})
	writeJSON(w, http.StatusOK, user)
}

// DELETE /v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "User")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventUserDelete, UserID: actor.UserID, TargetID: id})
	w.WriteHeader(http.StatusNoContent)
}
