package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroitcommons/commons/internal/http/middleware"
)

const secret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return signed
}

func TestAdminAuth(t *testing.T) {
	var gotIdentity string

	handler := middleware.AdminAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = middleware.Identity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("ValidToken", func(t *testing.T) {
		gotIdentity = ""

		token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin@example.com",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, []byte(secret))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "admin@example.com", gotIdentity)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthorized")
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin@example.com",
		}, []byte("other-secret"))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin@example.com",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, []byte(secret))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}, []byte(secret))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestIdentity_AbsentFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "", middleware.Identity(req.Context()))
}
