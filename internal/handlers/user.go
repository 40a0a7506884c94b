package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/me", Me)
}

// Me returns the current authenticated user, password hash excluded.
func Me(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
