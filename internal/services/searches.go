package services

import (
	"context"
	"errors"
	"strings"
)

// MaxRecentSearches caps the per-user search history.
const MaxRecentSearches = 8

// ErrEmptyTerm is returned when a search term is empty after trimming.
var ErrEmptyTerm = errors.New("search term is required")

// SearchHistoryService maintains each user's recent-search ledger: an
// ordered list, most recent first, capped at MaxRecentSearches entries,
// with case-insensitive uniqueness.
type SearchHistoryService struct {
	users UserRepository
}

func NewSearchHistoryService(users UserRepository) *SearchHistoryService {
	return &SearchHistoryService{users: users}
}

// Record prepends a term to the user's history. Any existing entry equal
// under case-insensitive comparison is dropped first, so the newest casing
// wins; the list is then truncated to the cap.
func (s *SearchHistoryService) Record(ctx context.Context, userID, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	searches := make([]string, 0, len(user.RecentSearches)+1)
	searches = append(searches, term)
	for _, existing := range user.RecentSearches {
		if !strings.EqualFold(existing, term) {
			searches = append(searches, existing)
		}
	}
	if len(searches) > MaxRecentSearches {
		searches = searches[:MaxRecentSearches]
	}

	if err := s.users.UpdateRecentSearches(ctx, userID, searches); err != nil {
		return nil, err
	}
	return searches, nil
}

// List returns the user's history as stored, most recent first.
func (s *SearchHistoryService) List(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RecentSearches, nil
}

// RemoveOne filters out any case-insensitive match for the term. Absence
// of the term is not an error.
func (s *SearchHistoryService) RemoveOne(ctx context.Context, userID, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	searches := make([]string, 0, len(user.RecentSearches))
	for _, existing := range user.RecentSearches {
		if !strings.EqualFold(existing, term) {
			searches = append(searches, existing)
		}
	}

	if err := s.users.UpdateRecentSearches(ctx, userID, searches); err != nil {
		return nil, err
	}
	return searches, nil
}

// Clear empties the user's history.
func (s *SearchHistoryService) Clear(ctx context.Context, userID string) error {
	return s.users.UpdateRecentSearches(ctx, userID, []string{})
}
