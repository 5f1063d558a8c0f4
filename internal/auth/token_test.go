package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie_token"})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "cookie_token", ExtractAccessToken(req))
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, ExtractAccessToken(req))
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		assert.Empty(t, ExtractAccessToken(req))
	})
}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	secret := []byte("test-secret")

	t.Run("Numeric user id", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{
			"user_id": float64(7),
			"role":    "ADMIN",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, "test-secret")

		claims, err := ParseToken(tok, secret)

		require.NoError(t, err)
		assert.Equal(t, "7", claims.UserID)
		assert.Equal(t, "ADMIN", claims.Role)
	})

	t.Run("String user id", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"user_id": "u-1"}, "test-secret")

		claims, err := ParseToken(tok, secret)

		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Empty(t, claims.Role)
	})

	t.Run("Expired", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{
			"user_id": float64(1),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}, "test-secret")

		_, err := ParseToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"user_id": float64(1)}, "other")

		_, err := ParseToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Missing user id", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"role": "ADMIN"}, "test-secret")

		_, err := ParseToken(tok, secret)
		assert.ErrorIs(t, err, ErrMissingUser)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-token", secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
