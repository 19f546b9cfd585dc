package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/audit"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/service"
)

type contextKey string

const ActorContextKey contextKey = "actor"

// GetActor returns the authenticated actor stored by AuthMiddleware.
func GetActor(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(model.Actor)
	return actor, ok
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey, actor)
}

type TokenValidator interface {
	Validate(token string) (*service.Claims, error)
}

type UserAuthenticator interface {
	Authenticate(ctx context.Context, userID string) (*model.User, error)
}

// AuthMiddleware verifies the bearer token and loads the current role of its user.
type AuthMiddleware struct {
	tokens TokenValidator
	users  UserAuthenticator
}

func NewAuthMiddleware(tokens TokenValidator, users UserAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			log.Warn().Err(err).Msg("auth middleware: invalid token attempt")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeError(w, apperrors.InvalidToken("Invalid token"))
			return
		}

		user, err := m.users.Authenticate(r.Context(), claims.UserID)
		if err != nil {
			if !apperrors.IsAppError(err) {
				log.Error().Err(err).Msg("auth middleware: database error")
			}
			writeError(w, err)
			return
		}

		ctx := WithActor(r.Context(), model.Actor{UserID: user.ID, Role: user.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects actors whose role is not listed.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				writeError(w, apperrors.Unauthorized("Authentication required"))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, apperrors.Forbidden("You do not have permission to perform this action"))
		})
	}
}

// extractToken reads the bearer token. EventSource clients cannot set headers, so ?token= is accepted too.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
