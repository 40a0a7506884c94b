package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/micromarket/apiserver/internal/services"
	"github.com/micromarket/apiserver/types"
)

// ErrToggleInFlight is returned when a favorite toggle is requested for a
// product whose previous toggle has not settled. Callers disable the
// control while Pending reports true.
var ErrToggleInFlight = errors.New("favorite toggle already in flight")

// Session mirrors server-side user state locally so the UI can update
// before the network round trip completes. The server is always the source
// of truth: every successful mutation replaces the local copy with the
// returned list. The two mutation families deliberately reconcile
// differently. Favorite toggles roll back on failure because a wrong
// favorites set misleads the user; recent-search mutations keep the
// optimistic result because drift there is low-stakes.
type Session struct {
	api *Client

	mu             sync.Mutex
	token          string
	user           types.User
	favorites      []string
	recentSearches []string
	inFlight       map[string]struct{}
}

// NewSession constructs a Session over the given API client.
func NewSession(api *Client) *Session {
	return &Session{
		api:      api,
		inFlight: make(map[string]struct{}),
	}
}

// Register creates an account and primes the local cache from the response.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	result, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	s.adopt(result)
	return nil
}

// Login authenticates and primes the local cache from the response.
func (s *Session) Login(ctx context.Context, email, password string) error {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.adopt(result)
	return nil
}

// Logout discards the token and all cached state. Tokens are stateless, so
// nothing is sent to the server.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = types.User{}
	s.favorites = nil
	s.recentSearches = nil
	s.inFlight = make(map[string]struct{})
	s.api.SetToken("")
}

// User returns the cached user record.
func (s *Session) User() types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Favorites returns a copy of the cached favorite product ids.
func (s *Session) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.favorites...)
}

// RecentSearches returns a copy of the cached recent-search list.
func (s *Session) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.recentSearches...)
}

// IsFavorite reports whether the product is in the cached favorites set.
func (s *Session) IsFavorite(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.favorites, productID)
}

// Pending reports whether a favorite toggle for the product is in flight.
func (s *Session) Pending(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[productID]
	return ok
}

// ToggleFavorite flips the product's favorite state: optimistic local
// update first, then the server call. On success the cache is replaced by
// the server's list; on failure it is rolled back to the previous state.
func (s *Session) ToggleFavorite(ctx context.Context, productID string) error {
	s.mu.Lock()
	if _, ok := s.inFlight[productID]; ok {
		s.mu.Unlock()
		return ErrToggleInFlight
	}
	previous := append([]string(nil), s.favorites...)
	wasFavorite := contains(s.favorites, productID)
	if wasFavorite {
		s.favorites = remove(s.favorites, productID)
	} else {
		s.favorites = append(s.favorites, productID)
	}
	s.inFlight[productID] = struct{}{}
	s.mu.Unlock()

	var result []string
	var err error
	if wasFavorite {
		result, err = s.api.RemoveFavorite(ctx, productID)
	} else {
		result, err = s.api.AddFavorite(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, productID)
	if err != nil {
		s.favorites = previous
		return err
	}
	s.favorites = result
	return nil
}

// ClearFavorites empties the favorites set with the same
// rollback-on-failure strategy as ToggleFavorite.
func (s *Session) ClearFavorites(ctx context.Context) error {
	s.mu.Lock()
	previous := s.favorites
	s.favorites = []string{}
	s.mu.Unlock()

	result, err := s.api.ClearFavorites(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.favorites = previous
		return err
	}
	s.favorites = result
	return nil
}

// RecordSearch applies the ledger rules locally, then syncs. On failure
// the optimistic list is kept, not rolled back.
func (s *Session) RecordSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return services.ErrEmptyTerm
	}

	s.mu.Lock()
	deduped := make([]string, 0, len(s.recentSearches)+1)
	deduped = append(deduped, term)
	for _, existing := range s.recentSearches {
		if !strings.EqualFold(existing, term) {
			deduped = append(deduped, existing)
		}
	}
	if len(deduped) > services.MaxRecentSearches {
		deduped = deduped[:services.MaxRecentSearches]
	}
	s.recentSearches = deduped
	s.mu.Unlock()

	result, err := s.api.RecordSearch(ctx, term)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recentSearches = result
	s.mu.Unlock()
	return nil
}

// RemoveRecentSearch filters the term locally, then syncs; optimistic
// state is kept on failure.
func (s *Session) RemoveRecentSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return services.ErrEmptyTerm
	}

	s.mu.Lock()
	filtered := make([]string, 0, len(s.recentSearches))
	for _, existing := range s.recentSearches {
		if !strings.EqualFold(existing, term) {
			filtered = append(filtered, existing)
		}
	}
	s.recentSearches = filtered
	s.mu.Unlock()

	result, err := s.api.RemoveRecentSearch(ctx, term)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recentSearches = result
	s.mu.Unlock()
	return nil
}

// ClearRecentSearches empties the ledger locally, then syncs; optimistic
// state is kept on failure.
func (s *Session) ClearRecentSearches(ctx context.Context) error {
	s.mu.Lock()
	s.recentSearches = []string{}
	s.mu.Unlock()

	result, err := s.api.ClearRecentSearches(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recentSearches = result
	s.mu.Unlock()
	return nil
}

func (s *Session) adopt(result AuthResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = result.Token
	s.user = result.User
	s.favorites = append([]string(nil), result.User.Favorites...)
	s.recentSearches = append([]string(nil), result.User.RecentSearches...)
	s.api.SetToken(result.Token)
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func remove(items []string, target string) []string {
	filtered := make([]string, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
