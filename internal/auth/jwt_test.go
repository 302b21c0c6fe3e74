package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthenticator(t *testing.T) {
	authenticator := NewJWTAuthenticator("access-secret", "refresh-secret", "Bakehouse", time.Hour, 24*time.Hour)

	access, refresh, err := authenticator.GenerateTokens(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	t.Run("access token carries identity and role", func(t *testing.T) {
		token, err := authenticator.ValidateAccessToken(access)
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, float64(42), claims["sub"])
		assert.Equal(t, "admin", claims["role"])
		assert.Equal(t, "Bakehouse", claims["iss"])
	})

	t.Run("refresh token omits the role", func(t *testing.T) {
		token, err := authenticator.ValidateRefreshToken(refresh)
		require.NoError(t, err)

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.NotContains(t, claims, "role")
	})

	t.Run("tokens are not interchangeable", func(t *testing.T) {
		_, err := authenticator.ValidateAccessToken(refresh)
		assert.Error(t, err)

		_, err = authenticator.ValidateRefreshToken(access)
		assert.Error(t, err)
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		expired := NewJWTAuthenticator("access-secret", "refresh-secret", "Bakehouse", -time.Minute, -time.Minute)
		access, _, err := expired.GenerateTokens(7, "user")
		require.NoError(t, err)

		_, err = authenticator.ValidateAccessToken(access)
		assert.Error(t, err)
	})
}
