package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/micromarket/apiserver/internal/services"
	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/types"
)

const (
	defaultPage        = 1
	defaultLimit       = 8
	maxLimit           = 50
	maxExtraImages     = 4
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 8 << 20
	formFieldImage     = "image"
)

// ProductHandler provides HTTP handlers for the catalog and favorites.
type ProductHandler struct {
	products  *services.ProductService
	favorites *services.FavoritesService
}

// NewProductHandler constructs a handler with the provided services.
func NewProductHandler(products *services.ProductService, favorites *services.FavoritesService) *ProductHandler {
	return &ProductHandler{
		products:  products,
		favorites: favorites,
	}
}

// ProductRouter registers product and favorites routes on the given router.
func ProductRouter(
	r chi.Router,
	products *services.ProductService,
	favorites *services.FavoritesService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewProductHandler(products, favorites)

	r.Get("/", handler.ListProducts)
	r.With(authMiddleware).Post("/", handler.CreateProduct)

	r.Route("/favorites", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListFavorites)
		r.Delete("/", handler.ClearFavorites)
	})
	r.With(authMiddleware).Get("/mine/favorites", handler.ListFavorites)

	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.With(authMiddleware).Put("/", handler.UpdateProduct)
		r.With(authMiddleware).Delete("/", handler.DeleteProduct)
		r.With(authMiddleware).Post("/favorite", handler.AddFavorite)
		r.With(authMiddleware).Delete("/favorite", handler.RemoveFavorite)
		r.With(authMiddleware).Post("/image", handler.UploadImage)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	items, total, err := h.products.List(r.Context(), offset, limit, query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Data: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, err := parseProductBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.products.Create(r.Context(), types.Product{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parseProductBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.products.Update(r.Context(), types.Product{
		ID:          id,
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	products, err := h.favorites.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	writeJSON(w, http.StatusOK, FavoriteProductsResponse{
		Data:  products,
		Count: len(products),
	})
}

func (h *ProductHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.favorites.Clear(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear favorites")
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: []string{}})
}

func (h *ProductHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	favorites, err := h.favorites.Add(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: favorites})
}

func (h *ProductHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	favorites, err := h.favorites.Remove(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Favorite not found for user")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: favorites})
}

// UploadImage replaces the product's primary image with an uploaded file.
// Available only when an object storage backend is configured.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.products.ImagesEnabled() {
		writeError(w, http.StatusNotFound, "Image uploads are not enabled")
		return
	}

	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "Image file too large")
		return
	}

	product, err := h.products.SaveImage(r.Context(), id, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ProductUpsertRequest is the JSON payload for create/update.
type ProductUpsertRequest struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
}

// ProductListResponse is the paginated list response payload.
type ProductListResponse struct {
	Data       []types.Product `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// FavoriteProductsResponse carries favorite products resolved to records.
type FavoriteProductsResponse struct {
	Data  []types.Product `json:"data"`
	Count int             `json:"count"`
}

// FavoritesResponse carries the favorite product id set after a mutation.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("page must be >= 1")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, 0, errors.New("limit must be 1-50")
		}
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

func parseProductID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "productID")
	if _, err := uuid.Parse(raw); err != nil {
		return "", errors.New("Invalid product ID")
	}
	return raw, nil
}

func parseProductBody(r *http.Request) (ProductUpsertRequest, error) {
	var req ProductUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ProductUpsertRequest{}, errors.New("Invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Image = strings.TrimSpace(req.Image)

	if len([]rune(req.Title)) < 2 {
		return ProductUpsertRequest{}, errors.New("Title must be at least 2 characters")
	}
	if req.Price < 0 {
		return ProductUpsertRequest{}, errors.New("Price must be >= 0")
	}
	if len([]rune(req.Description)) < 3 {
		return ProductUpsertRequest{}, errors.New("Description must be at least 3 characters")
	}
	if !validURL(req.Image) {
		return ProductUpsertRequest{}, errors.New("Image must be a valid URL")
	}
	if len(req.Images) > maxExtraImages {
		return ProductUpsertRequest{}, errors.New("images must be an array with up to 4 URLs")
	}
	for _, image := range req.Images {
		if !validURL(image) {
			return ProductUpsertRequest{}, errors.New("Each image must be a valid URL")
		}
	}

	return req, nil
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
