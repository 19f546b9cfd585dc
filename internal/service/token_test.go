package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamehub/station-server-go/internal/model"
)

func TestTokenService(t *testing.T) {
	tokens := NewTokenService("test-secret-with-enough-length-123", time.Hour)
	user := &model.User{ID: "user-1", Role: model.RoleStaff}

	t.Run("round trips actor claims", func(t *testing.T) {
		token, err := tokens.Generate(user)
		require.NoError(t, err)

		claims, err := tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, model.RoleStaff, claims.Role)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := NewTokenService("another-secret-with-enough-length", time.Hour)
		token, err := other.Generate(user)
		require.NoError(t, err)

		_, err = tokens.Validate(token)
		assert.Error(t, err)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := &TokenService{secret: []byte("test-secret-with-enough-length-123"), expiresIn: -time.Minute}
		token, err := expired.Generate(user)
		require.NoError(t, err)

		_, err = tokens.Validate(token)
		assert.Error(t, err)
	})

	t.Run("requires a user id", func(t *testing.T) {
		_, err := tokens.Generate(&model.User{})
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := tokens.Validate("not.a.token")
		assert.Error(t, err)
	})
}
