package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/micromarket/apiserver/internal/events"
	"github.com/micromarket/apiserver/internal/storage"
	"github.com/micromarket/apiserver/types"
)

const (
	defaultListLimit = 8
	maxListLimit     = 50

	actionCreated = "product.created"
	actionUpdated = "product.updated"
	actionDeleted = "product.deleted"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context, offset, limit int, query string) ([]types.Product, int, error)
	Get(ctx context.Context, id string) (types.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	UpdateImage(ctx context.Context, id, imageURL string) error
	Delete(ctx context.Context, id string) error
}

// ProductService encapsulates catalog use-cases. Image storage and the
// event publisher are optional; pass nil to disable them.
type ProductService struct {
	repo      ProductRepository
	images    *storage.Storage
	publisher *events.Publisher
	topic     string
}

func NewProductService(repo ProductRepository, images *storage.Storage, publisher *events.Publisher, topic string) *ProductService {
	return &ProductService{
		repo:      repo,
		images:    images,
		publisher: publisher,
		topic:     topic,
	}
}

func (s *ProductService) List(ctx context.Context, offset, limit int, query string) ([]types.Product, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, offset, limit, query)
}

func (s *ProductService) Get(ctx context.Context, id string) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) GetByIDs(ctx context.Context, ids []string) ([]types.Product, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *ProductService) Create(ctx context.Context, product types.Product) (types.Product, error) {
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.publish(ctx, actionCreated, created)
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, product types.Product) (types.Product, error) {
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.publish(ctx, actionUpdated, updated)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.images != nil {
		if err := s.images.Delete(ctx, imageKey(id)); err != nil {
			log.Printf("delete image for product %s: %v", id, err)
		}
	}
	s.publish(ctx, actionDeleted, product)
	return nil
}

// ImagesEnabled reports whether an object storage backend is configured.
func (s *ProductService) ImagesEnabled() bool {
	return s.images != nil
}

// SaveImage stores an uploaded primary image and rewrites the product's
// image URL to the stored object's public URL.
func (s *ProductService) SaveImage(ctx context.Context, id string, r io.Reader, size int64, contentType string) (types.Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return types.Product{}, err
	}

	key := imageKey(id)
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return types.Product{}, err
	}

	imageURL := s.images.PublicURL(key)
	if err := s.repo.UpdateImage(ctx, id, imageURL); err != nil {
		return types.Product{}, err
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}
	s.publish(ctx, actionUpdated, updated)
	return updated, nil
}

// publish emits a catalog event when a broker is configured. Publish
// failures are logged, never surfaced to the API caller.
func (s *ProductService) publish(ctx context.Context, action string, product types.Product) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(catalogEvent{Action: action, Product: product})
	if err != nil {
		log.Printf("marshal catalog event: %v", err)
		return
	}
	if _, err := s.publisher.Publish(ctx, s.topic, payload, map[string]string{"action": action}); err != nil {
		log.Printf("publish catalog event: %v", err)
	}
}

type catalogEvent struct {
	Action  string        `json:"action"`
	Product types.Product `json:"product"`
}

func imageKey(productID string) string {
	return fmt.Sprintf("products/%s", productID)
}
