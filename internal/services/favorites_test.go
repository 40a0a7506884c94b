package services

import (
	"context"
	"testing"

	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, users *fakeUserRepo) types.User {
	t.Helper()
	user, err := users.Create(context.Background(), types.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func seedProduct(t *testing.T, products *fakeProductRepo, title string) types.Product {
	t.Helper()
	product, err := products.Create(context.Background(), types.Product{
		Title:       title,
		Price:       10,
		Description: "a thing",
		Image:       "https://example.com/img.jpg",
	})
	require.NoError(t, err)
	return product
}

func TestFavoritesAddAndList(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	product := seedProduct(t, products, "Desk Lamp")

	favorites, err := svc.Add(context.Background(), user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID}, favorites)

	listed, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, product.ID, listed[0].ID)
}

func TestFavoritesAddIsIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	product := seedProduct(t, products, "Desk Lamp")

	first, err := svc.Add(context.Background(), user.ID, product.ID)
	require.NoError(t, err)
	second, err := svc.Add(context.Background(), user.ID, product.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 1)
}

func TestFavoritesAddMissingProduct(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)

	_, err := svc.Add(context.Background(), user.ID, "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFavoritesRemoveMissingIsError(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	product := seedProduct(t, products, "Desk Lamp")

	_, err := svc.Remove(context.Background(), user.ID, product.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The failed remove must not have touched the stored set.
	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Favorites)
}

func TestFavoritesRemove(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	first := seedProduct(t, products, "Desk Lamp")
	second := seedProduct(t, products, "Journal")

	_, err := svc.Add(context.Background(), user.ID, first.ID)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), user.ID, second.ID)
	require.NoError(t, err)

	favorites, err := svc.Remove(context.Background(), user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, favorites)
}

func TestFavoritesListNewestFirst(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	older := seedProduct(t, products, "Older")
	newer := seedProduct(t, products, "Newer")

	_, err := svc.Add(context.Background(), user.ID, older.ID)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), user.ID, newer.ID)
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestFavoritesListEmpty(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)

	listed, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFavoritesClear(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	svc := NewFavoritesService(users, products)

	user := seedUser(t, users)
	product := seedProduct(t, products, "Desk Lamp")

	_, err := svc.Add(context.Background(), user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), user.ID))

	listed, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
