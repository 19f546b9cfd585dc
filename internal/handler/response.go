package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/httputil"
	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/util"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// writeError logs unexpected failures before rendering err.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !apperrors.IsAppError(err) {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	httputil.WriteError(w, err)
}

// pathID returns the {id} URL parameter. Malformed ids cannot name a row, so they read as not found.
func pathID(r *http.Request, resource string) (string, error) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		return "", apperrors.NotFound(resource)
	}
	return id, nil
}

func actorFrom(r *http.Request) (model.Actor, error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		return model.Actor{}, apperrors.Unauthorized("Authentication required")
	}
	return actor, nil
}
