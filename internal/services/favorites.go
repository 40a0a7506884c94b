package services

import (
	"context"

	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/types"
)

// FavoritesService maintains the set of products a user has favorited.
// The set is persisted as a whole field: each mutation is a fetch, an
// in-memory edit, and a field replace.
type FavoritesService struct {
	users    UserRepository
	products ProductRepository
}

func NewFavoritesService(users UserRepository, products ProductRepository) *FavoritesService {
	return &FavoritesService{
		users:    users,
		products: products,
	}
}

// Add favorites a product for the user. Adding a product that is already
// favorited is not an error; the set is returned unchanged. A product id
// that resolves to nothing fails with store.ErrNotFound.
func (s *FavoritesService) Add(ctx context.Context, userID, productID string) ([]string, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, id := range user.Favorites {
		if id == productID {
			return user.Favorites, nil
		}
	}

	favorites := append(user.Favorites, productID)
	if err := s.users.UpdateFavorites(ctx, userID, favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// Remove unfavorites a product. Unlike Add, removing a product that is not
// in the set fails with store.ErrNotFound so clients can detect drift in
// their optimistic state.
func (s *FavoritesService) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]string, 0, len(user.Favorites))
	for _, id := range user.Favorites {
		if id != productID {
			favorites = append(favorites, id)
		}
	}
	if len(favorites) == len(user.Favorites) {
		return nil, store.ErrNotFound
	}

	if err := s.users.UpdateFavorites(ctx, userID, favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// List resolves the user's favorites to full product records, newest first.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]types.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []types.Product{}, nil
	}
	return s.products.GetByIDs(ctx, user.Favorites)
}

// Clear empties the user's favorites.
func (s *FavoritesService) Clear(ctx context.Context, userID string) error {
	return s.users.UpdateFavorites(ctx, userID, []string{})
}
