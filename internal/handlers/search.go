package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/micromarket/apiserver/internal/services"
)

// SearchHandler provides the recent-search ledger endpoints.
type SearchHandler struct {
	searches *services.SearchHistoryService
}

// NewSearchHandler constructs a handler with the provided service.
func NewSearchHandler(searches *services.SearchHistoryService) *SearchHandler {
	return &SearchHandler{searches: searches}
}

// SearchRouter registers recent-search routes on the given router.
func SearchRouter(r chi.Router, searches *services.SearchHistoryService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSearchHandler(searches)

	r.Use(authMiddleware)
	r.Get("/recent-searches", handler.ListRecentSearches)
	r.Post("/recent-searches", handler.RecordSearch)
	r.Delete("/recent-searches", handler.ClearRecentSearches)
	r.Delete("/recent-searches/{term}", handler.RemoveRecentSearch)
}

func (h *SearchHandler) ListRecentSearches(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	searches, err := h.searches.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recent searches")
		return
	}

	writeJSON(w, http.StatusOK, RecentSearchesResponse{RecentSearches: searches})
}

func (h *SearchHandler) RecordSearch(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req RecordSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	searches, err := h.searches.Record(r.Context(), user.ID, req.Term)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTerm) {
			writeError(w, http.StatusBadRequest, "Search term is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record search")
		return
	}

	writeJSON(w, http.StatusOK, RecentSearchesResponse{RecentSearches: searches})
}

func (h *SearchHandler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.searches.Clear(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear recent searches")
		return
	}

	writeJSON(w, http.StatusOK, RecentSearchesResponse{RecentSearches: []string{}})
}

func (h *SearchHandler) RemoveRecentSearch(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	term := chi.URLParam(r, "term")
	if decoded, err := url.PathUnescape(term); err == nil {
		term = decoded
	}

	searches, err := h.searches.RemoveOne(r.Context(), user.ID, term)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTerm) {
			writeError(w, http.StatusBadRequest, "Search term is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to remove recent search")
		return
	}

	writeJSON(w, http.StatusOK, RecentSearchesResponse{RecentSearches: searches})
}

type RecordSearchRequest struct {
	Term string `json:"term"`
}

// RecentSearchesResponse carries the ledger after any read or mutation.
type RecentSearchesResponse struct {
	RecentSearches []string `json:"recentSearches"`
}
