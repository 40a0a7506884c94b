package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMissingHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorMessage(t, rec))
}

func TestAuthMalformedToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", errorMessage(t, rec))
}

func TestAuthNonBearerScheme(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorMessage(t, rec))
}

func TestAuthDeletedUserTokenRevoked(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "Alice", "alice@example.com", "secret1")

	require.NoError(t, env.users.Delete(context.Background(), resp.User.ID))

	rec := env.do(t, http.MethodGet, "/users/me", resp.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", errorMessage(t, rec))
}

func TestAuthPreflightBypass(t *testing.T) {
	env := newTestEnv(t)

	reached := false
	guard := RequireAuth(env.tokens, env.userSvc)
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/products/favorites", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
