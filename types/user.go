package types

import "time"

// User represents an account in the system.
// It carries the per-user marketplace state alongside identity.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, unique and stored lower-case.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Favorites holds the ids of products the user has favorited.
	// No product id appears twice.
	Favorites []string `json:"favorites" db:"favorites"`

	// RecentSearches holds the user's search terms, most recent first,
	// capped at eight entries with case-insensitive uniqueness.
	RecentSearches []string `json:"recentSearches" db:"recent_searches"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
