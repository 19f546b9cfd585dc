package handler

import (
	"context"
	"net/http"

	"github.com/gamehub/station-server-go/internal/audit"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/httputil"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/service"
)

type accountService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	Get(ctx context.Context, actor model.Actor, id string) (*model.User, error)
}

type AuthHandler struct {
	users accountService
}

func NewAuthHandler(users accountService) *AuthHandler {
	return &AuthHandler{users: users}
}

// POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, apperrors.ValidationError("username and password are required"))
		return
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventLoginFailure,
				Details: map[string]interface{}{"username": req.Username},
			})
		}
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: result.User.ID})
	writeJSON(w, http.StatusOK, result)
}

// POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventUserRegister, UserID: user.ID, TargetID: user.ID})
	writeJSON(w, http.StatusCreated, user)
}

// GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), actor, actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
