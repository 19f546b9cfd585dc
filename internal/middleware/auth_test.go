package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/service"
)

type mockTokenValidator struct {
	validateFunc func(token string) (*service.Claims, error)
}

func (m *mockTokenValidator) Validate(token string) (*service.Claims, error) {
	return m.validateFunc(token)
}

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, userID string) (*model.User, error) {
	return m.authenticateFunc(ctx, userID)
}

func newTestAuth() *AuthMiddleware {
	tokens := &mockTokenValidator{validateFunc: func(token string) (*service.Claims, error) {
		switch token {
		case "valid-token":
			return &service.Claims{UserID: "user-1", Role: model.RolePlayer}, nil
		case "deleted-user":
			return &service.Claims{UserID: "ghost"}, nil
		}
		return nil, errors.New("bad token")
	}}
	users := &mockAuthenticator{authenticateFunc: func(ctx context.Context, userID string) (*model.User, error) {
		if userID == "user-1" {
			// The stored role wins over the one in the token.
			return &model.User{ID: "user-1", Role: model.RoleStaff, IsActive: true}, nil
		}
		return nil, apperrors.InvalidToken("User no longer exists")
	}}
	return NewAuthMiddleware(tokens, users)
}

func TestAuthMiddleware(t *testing.T) {
	auth := newTestAuth()

	var gotActor model.Actor
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("returns 401 without token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stations", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("returns 401 for invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("returns 401 when the user is gone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
		req.Header.Set("Authorization", "Bearer deleted-user")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stores the actor with its current role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.Actor{UserID: "user-1", Role: model.RoleStaff}, gotActor)
	})

	t.Run("accepts token query parameter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stations/events?token=valid-token", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleAdmin, model.RoleStaff)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		actor    *model.Actor
		expected int
	}{
		{"admin allowed", &model.Actor{UserID: "a", Role: model.RoleAdmin}, http.StatusNoContent},
		{"staff allowed", &model.Actor{UserID: "s", Role: model.RoleStaff}, http.StatusNoContent},
		{"player forbidden", &model.Actor{UserID: "p", Role: model.RolePlayer}, http.StatusForbidden},
		{"anonymous unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
			if tc.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}
