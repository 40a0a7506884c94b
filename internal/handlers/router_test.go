package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/micromarket/apiserver/internal/services"
	"github.com/micromarket/apiserver/internal/token"
	"github.com/micromarket/apiserver/types"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   chi.Router
	users    *fakeUserRepo
	products *fakeProductRepo
	userSvc  *services.UserService
	tokens   *token.Service
}

// newTestEnv wires the full route tree over in-memory repositories, with
// image storage and the event publisher disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserRepo()
	products := newFakeProductRepo()

	userSvc := services.NewUserService(users)
	productSvc := services.NewProductService(products, nil, nil, "")
	favoritesSvc := services.NewFavoritesService(users, products)
	searchSvc := services.NewSearchHistoryService(users)
	tokens := token.NewService("test-secret", time.Hour)
	auth := RequireAuth(tokens, userSvc)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userSvc, tokens)
	})
	r.Route("/products", func(r chi.Router) {
		ProductRouter(r, productSvc, favoritesSvc, auth)
	})
	r.Route("/users", func(r chi.Router) {
		UserRouter(r, auth)
	})
	r.Route("/search", func(r chi.Router) {
		SearchRouter(r, searchSvc, auth)
	})

	return &testEnv{
		router:   r,
		users:    users,
		products: products,
		userSvc:  userSvc,
		tokens:   tokens,
	}
}

func (e *testEnv) do(t *testing.T, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Message
}

func (e *testEnv) register(t *testing.T, name, email, password string) AuthResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	return resp
}

func (e *testEnv) createProduct(t *testing.T, bearer, title string) types.Product {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/products", bearer, ProductUpsertRequest{
		Title:       title,
		Price:       19.99,
		Description: "a sturdy item",
		Image:       "https://example.com/img.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var product types.Product
	decodeBody(t, rec, &product)
	return product
}
