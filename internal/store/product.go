package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/micromarket/apiserver/types"
)

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns a page of products ordered by descending creation time,
// plus the total count under the same filter. A non-empty query matches
// title or description as a case-insensitive substring.
func (r *ProductRepository) List(ctx context.Context, offset, limit int, query string) ([]types.Product, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 8
	}

	query = strings.TrimSpace(query)
	pattern := "%" + query + "%"

	var total int
	if query == "" {
		const countAll = `SELECT COUNT(1) FROM products`
		if err := r.db.QueryRowContext(ctx, countAll).Scan(&total); err != nil {
			return nil, 0, err
		}
	} else {
		const countFiltered = `
			SELECT COUNT(1) FROM products
			WHERE title ILIKE $1 OR description ILIKE $1`
		if err := r.db.QueryRowContext(ctx, countFiltered, pattern).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	var rows *sql.Rows
	var err error
	if query == "" {
		const listAll = `
			SELECT id, title, price, description, image, images, created_at, updated_at
			FROM products
			ORDER BY created_at DESC
			OFFSET $1 LIMIT $2`
		rows, err = r.db.QueryContext(ctx, listAll, offset, limit)
	} else {
		const listFiltered = `
			SELECT id, title, price, description, image, images, created_at, updated_at
			FROM products
			WHERE title ILIKE $1 OR description ILIKE $1
			ORDER BY created_at DESC
			OFFSET $2 LIMIT $3`
		rows, err = r.db.QueryContext(ctx, listFiltered, pattern, offset, limit)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (types.Product, error) {
	const query = `
		SELECT id, title, price, description, image, images, created_at, updated_at
		FROM products
		WHERE id = $1`
	var product types.Product
	var imagesJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&product.Description,
		&product.Image,
		&imagesJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}

	_ = json.Unmarshal(imagesJSON, &product.Images)
	return product, nil
}

// GetByIDs resolves a set of product ids to full records, ordered by
// descending creation time. Missing ids are silently skipped.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]types.Product, error) {
	if len(ids) == 0 {
		return []types.Product{}, nil
	}

	const query = `
		SELECT id, title, price, description, image, images, created_at, updated_at
		FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows, len(ids))
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	now := time.Now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		INSERT INTO products (id, title, price, description, image, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Price,
		product.Description,
		product.Image,
		imagesJSON,
		product.CreatedAt,
		product.UpdatedAt,
	); err != nil {
		return types.Product{}, err
	}

	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	product.UpdatedAt = time.Now()
	if product.Images == nil {
		product.Images = []string{}
	}

	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		UPDATE products
		SET title = $1,
			price = $2,
			description = $3,
			image = $4,
			images = $5,
			updated_at = $6
		WHERE id = $7
		RETURNING created_at`
	err = r.db.QueryRowContext(
		ctx,
		query,
		product.Title,
		product.Price,
		product.Description,
		product.Image,
		imagesJSON,
		product.UpdatedAt,
		product.ID,
	).Scan(&product.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}

	return product, nil
}

// UpdateImage replaces only the primary image URL.
func (r *ProductRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	const query = `
		UPDATE products
		SET image = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, imageURL, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProducts(rows *sql.Rows, capacity int) ([]types.Product, error) {
	products := make([]types.Product, 0, capacity)
	for rows.Next() {
		var product types.Product
		var imagesJSON []byte
		if err := rows.Scan(
			&product.ID,
			&product.Title,
			&product.Price,
			&product.Description,
			&product.Image,
			&imagesJSON,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}

		_ = json.Unmarshal(imagesJSON, &product.Images)
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
