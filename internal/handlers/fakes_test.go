package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/types"
)

type fakeUserRepo struct {
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	email = store.NormalizeEmail(email)
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.Email = store.NormalizeEmail(user.Email)
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	if user.RecentSearches == nil {
		user.RecentSearches = []string{}
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateFavorites(_ context.Context, id string, favorites []string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Favorites = append([]string(nil), favorites...)
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) UpdateRecentSearches(_ context.Context, id string, searches []string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.RecentSearches = append([]string(nil), searches...)
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProductRepo struct {
	products map[string]types.Product
	clock    time.Time
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[string]types.Product),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeProductRepo) List(_ context.Context, offset, limit int, query string) ([]types.Product, int, error) {
	matched := make([]types.Product, 0, len(f.products))
	for _, product := range f.products {
		if query == "" ||
			strings.Contains(strings.ToLower(product.Title), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(product.Description), strings.ToLower(query)) {
			matched = append(matched, product)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []types.Product{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeProductRepo) Get(_ context.Context, id string) (types.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []string) ([]types.Product, error) {
	matched := make([]types.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			matched = append(matched, product)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (f *fakeProductRepo) Create(_ context.Context, product types.Product) (types.Product, error) {
	product.ID = uuid.NewString()
	f.clock = f.clock.Add(time.Minute)
	product.CreatedAt = f.clock
	product.UpdatedAt = f.clock
	if product.Images == nil {
		product.Images = []string{}
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product types.Product) (types.Product, error) {
	existing, ok := f.products[product.ID]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = existing.UpdatedAt.Add(time.Second)
	if product.Images == nil {
		product.Images = []string{}
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) UpdateImage(_ context.Context, id, imageURL string) error {
	product, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	product.Image = imageURL
	f.products[id] = product
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}
