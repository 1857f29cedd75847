package repository

import (
	"context"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
)

// Attribute is a scalar product field that supports exact-match lookups.
type Attribute string

const (
	AttrCategory Attribute = "category"
	AttrShipping Attribute = "shipping"
	AttrColor    Attribute = "color"
	AttrBrand    Attribute = "brand"
)

// ListOptions orders and windows a product listing.
type ListOptions struct {
	Sort   string // one of the domain.Sort* fields
	Desc   bool
	Offset int
	Limit  int
}

// ProductRepository defines product persistence. Every read returns products
// with category, subs and poster joined as shallow refs.
type ProductRepository interface {
	// Create inserts product, assigning its ID and timestamps.
	Create(ctx context.Context, product *domain.Product) error

	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// Update replaces the editable fields of the product with product.ID.
	Update(ctx context.Context, product *domain.Product) error

	// DeleteBySlug removes a product and returns what was removed.
	DeleteBySlug(ctx context.Context, slug string) (*domain.Product, error)

	List(ctx context.Context, opts ListOptions) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)

	// SearchText ranks products by relevance to query over title and description.
	SearchText(ctx context.Context, query string, limit int) ([]domain.Product, error)

	// FindByPriceRange returns products priced inside r, both bounds inclusive.
	FindByPriceRange(ctx context.Context, r domain.PriceRange, limit int) ([]domain.Product, error)

	// FindByAttribute returns products whose attr equals value exactly.
	FindByAttribute(ctx context.Context, attr Attribute, value any, limit int) ([]domain.Product, error)

	// FloorAverageIDs returns the ids of products whose floored average
	// rating equals bucket. Unrated products never match.
	FloorAverageIDs(ctx context.Context, bucket, limit int) ([]string, error)

	// FindByIDs fetches products in the order of ids, skipping missing ones.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// UpsertRating atomically sets userID's star on the product, appending a
	// rating when the user has none, and returns the updated product.
	UpsertRating(ctx context.Context, productID, userID string, star int) (*domain.Product, error)

	// ListRelated returns products sharing categoryID, excluding productID.
	ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error)
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	DeleteBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// UserDirectory resolves authenticated identities to stored users.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
