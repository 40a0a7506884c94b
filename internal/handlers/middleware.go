package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/micromarket/apiserver/internal/services"
	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/internal/token"
)

// RequireAuth builds middleware that resolves a bearer token to a live user
// record and attaches it to the request context. Verification alone is not
// enough: the encoded user must still exist, so deleting a user revokes its
// outstanding tokens immediately. Preflight requests pass through with no
// identity attached.
func RequireAuth(tokens *token.Service, users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			user.PasswordHash = ""
			ctx := context.WithValue(r.Context(), contextUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", errors.New("invalid authorization")
	}
	return tokenString, nil
}
