// Package client is a Go client for the marketplace API. Client is a thin
// HTTP wrapper; Session adds the local optimistic cache the web and mobile
// apps keep on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/micromarket/apiserver/types"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded into its message payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the marketplace API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New constructs a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken sets the bearer token attached to subsequent requests. An empty
// token clears it (logout is purely a client-side discard).
func (c *Client) SetToken(token string) {
	c.token = token
}

// AuthResult is the payload of a successful register or login.
type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Data       []types.Product `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var result AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

func (c *Client) Me(ctx context.Context) (types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (c *Client) Products(ctx context.Context, page, limit int, query string) (ProductPage, error) {
	path := fmt.Sprintf("/products?page=%d&limit=%d", page, limit)
	if query != "" {
		path += "&q=" + url.QueryEscape(query)
	}
	var result ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return ProductPage{}, err
	}
	return result, nil
}

func (c *Client) Product(ctx context.Context, id string) (types.Product, error) {
	var product types.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &product); err != nil {
		return types.Product{}, err
	}
	return product, nil
}

func (c *Client) FavoriteProducts(ctx context.Context) ([]types.Product, error) {
	var result struct {
		Data []types.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/mine/favorites", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) AddFavorite(ctx context.Context, productID string) ([]string, error) {
	return c.favoritesCall(ctx, http.MethodPost, "/products/"+productID+"/favorite")
}

func (c *Client) RemoveFavorite(ctx context.Context, productID string) ([]string, error) {
	return c.favoritesCall(ctx, http.MethodDelete, "/products/"+productID+"/favorite")
}

func (c *Client) ClearFavorites(ctx context.Context) ([]string, error) {
	return c.favoritesCall(ctx, http.MethodDelete, "/products/favorites")
}

func (c *Client) RecentSearches(ctx context.Context) ([]string, error) {
	return c.searchesCall(ctx, http.MethodGet, "/search/recent-searches", nil)
}

func (c *Client) RecordSearch(ctx context.Context, term string) ([]string, error) {
	return c.searchesCall(ctx, http.MethodPost, "/search/recent-searches", map[string]string{"term": term})
}

func (c *Client) RemoveRecentSearch(ctx context.Context, term string) ([]string, error) {
	return c.searchesCall(ctx, http.MethodDelete, "/search/recent-searches/"+url.PathEscape(term), nil)
}

func (c *Client) ClearRecentSearches(ctx context.Context) ([]string, error) {
	return c.searchesCall(ctx, http.MethodDelete, "/search/recent-searches", nil)
}

func (c *Client) favoritesCall(ctx context.Context, method, path string) ([]string, error) {
	var result struct {
		Favorites []string `json:"favorites"`
	}
	if err := c.do(ctx, method, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Favorites, nil
}

func (c *Client) searchesCall(ctx context.Context, method, path string, body any) ([]string, error) {
	var result struct {
		RecentSearches []string `json:"recentSearches"`
	}
	if err := c.do(ctx, method, path, body, &result); err != nil {
		return nil, err
	}
	return result.RecentSearches, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "Request failed"}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
