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

const uniqueViolation = "23505"

// UserRepository handles persistence for users. Favorites and recent
// searches live as whole jsonb fields on the user row; updates replace the
// field, so concurrent writers last-write-win.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT id, name, email, password_hash, favorites, recent_searches, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, name, email, password_hash, favorites, recent_searches, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.ID = uuid.NewString()
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	if user.RecentSearches == nil {
		user.RecentSearches = []string{}
	}

	favoritesJSON, err := json.Marshal(user.Favorites)
	if err != nil {
		return types.User{}, err
	}
	searchesJSON, err := json.Marshal(user.RecentSearches)
	if err != nil {
		return types.User{}, err
	}

	const query = `
		INSERT INTO users (id, name, email, password_hash, favorites, recent_searches, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		favoritesJSON,
		searchesJSON,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateFavorites replaces the user's favorites field.
func (r *UserRepository) UpdateFavorites(ctx context.Context, id string, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	favoritesJSON, err := json.Marshal(favorites)
	if err != nil {
		return err
	}

	const query = `
		UPDATE users
		SET favorites = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, favoritesJSON, time.Now(), id)
}

// UpdateRecentSearches replaces the user's recent searches field.
func (r *UserRepository) UpdateRecentSearches(ctx context.Context, id string, searches []string) error {
	if searches == nil {
		searches = []string{}
	}
	searchesJSON, err := json.Marshal(searches)
	if err != nil {
		return err
	}

	const query = `
		UPDATE users
		SET recent_searches = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, searchesJSON, time.Now(), id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	return r.execExpectingRow(ctx, query, id)
}

func (r *UserRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var favoritesJSON, searchesJSON []byte
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&favoritesJSON,
		&searchesJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	_ = json.Unmarshal(favoritesJSON, &user.Favorites)
	_ = json.Unmarshal(searchesJSON, &user.RecentSearches)
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	if user.RecentSearches == nil {
		user.RecentSearches = []string{}
	}
	return user, nil
}

// NormalizeEmail lower-cases and trims an email address so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
