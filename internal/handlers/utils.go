package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/micromarket/apiserver/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// ErrorResponse is the error payload for every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func userFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok || user.ID == "" {
		return types.User{}, errors.New("missing user")
	}
	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
