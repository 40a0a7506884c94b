package types

import "time"

// Product represents a catalog listing.
type Product struct {
	// ID is the unique identifier of the product.
	ID string `json:"id" db:"id"`

	// Title is the listing title.
	Title string `json:"title" db:"title"`

	// Price is the listing price, never negative.
	Price float64 `json:"price" db:"price"`

	// Description is the listing description.
	Description string `json:"description" db:"description"`

	// Image is the primary image URL.
	Image string `json:"image" db:"image"`

	// Images holds up to four additional image URLs.
	Images []string `json:"images" db:"images"`

	// CreatedAt is the timestamp when the product was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
