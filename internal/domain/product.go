package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Ref is a shallow view of a referenced document: enough to render a link
// without pulling the whole record.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Image is a product picture hosted elsewhere.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// Product is a catalog item. Category, Subs and PostedBy hold ids on write
// and are filled with names when read through a joining query.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    *Ref      `json:"category,omitempty"`
	Subs        []Ref     `json:"subs"`
	Brand       string    `json:"brand"`
	Color       string    `json:"color"`
	Shipping    bool      `json:"shipping"`
	Quantity    int       `json:"quantity"`
	Sold        int       `json:"sold"`
	Images      []Image   `json:"images"`
	Ratings     []Rating  `json:"ratings"`
	PostedBy    *Ref      `json:"posted_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryID returns the id of the product's category, or "".
func (p *Product) CategoryID() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.ID
}

// Normalize replaces nil slices with empty ones so listings never render
// null arrays.
func (p *Product) Normalize() {
	if p.Subs == nil {
		p.Subs = []Ref{}
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	if p.Ratings == nil {
		p.Ratings = []Rating{}
	}
}

// Sortable product fields for paginated listings.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortPrice     = "price"
	SortSold      = "sold"
	SortTitle     = "title"
)

// IsValidSort reports whether field may be used to order listings.
func IsValidSort(field string) bool {
	switch field {
	case SortCreatedAt, SortUpdatedAt, SortPrice, SortSold, SortTitle:
		return true
	}
	return false
}

// IsObjectID reports whether s parses as a document id.
func IsObjectID(s string) bool {
	_, err := bson.ObjectIDFromHex(s)
	return err == nil
}
