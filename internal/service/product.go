package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/cache"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/pagination"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/slug"
)

// relatedLimit caps the related-products listing.
const relatedLimit = 3

// ProductEvents publishes product lifecycle events.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, product *domain.Product) error
	PublishProductRated(ctx context.Context, product *domain.Product, userID string, star int) error
}

// ProductService implements product CRUD, listings and ratings.
type ProductService struct {
	repo    repository.ProductRepository
	events  ProductEvents
	cache   cache.SearchCache
	listing pagination.Policy
	newest  pagination.Policy
	logger  *slog.Logger
}

// NewProductService creates a product service. newest bounds the newest-N
// listing, listing bounds the paginated one. A nil cache disables
// invalidation.
func NewProductService(
	repo repository.ProductRepository,
	events ProductEvents,
	c cache.SearchCache,
	newest, listing pagination.Policy,
	logger *slog.Logger,
) *ProductService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ProductService{
		repo:    repo,
		events:  events,
		cache:   c,
		listing: listing,
		newest:  newest,
		logger:  logger,
	}
}

// ProductInput holds the editable product fields. Nil pointers leave the
// field unchanged on update; on create they take the zero value.
type ProductInput struct {
	Title       *string
	Description *string
	Price       *float64
	CategoryID  *string
	SubIDs      []string
	Brand       *string
	Color       *string
	Shipping    *bool
	Quantity    *int
	Sold        *int
	Images      []domain.Image
}

// ListInput selects a page of products.
type ListInput struct {
	Sort    string
	Order   string
	Page    *int
	PerPage *int
}

func (in *ProductInput) apply(p *domain.Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			p.Category = nil
		} else {
			p.Category = &domain.Ref{ID: *in.CategoryID}
		}
	}
	if in.SubIDs != nil {
		p.Subs = make([]domain.Ref, len(in.SubIDs))
		for i, id := range in.SubIDs {
			p.Subs[i] = domain.Ref{ID: id}
		}
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.Shipping != nil {
		p.Shipping = *in.Shipping
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Sold != nil {
		p.Sold = *in.Sold
	}
	if in.Images != nil {
		p.Images = in.Images
	}
}

func titleSlug(title string) (string, error) {
	s := slug.Generate(title)
	if s == "" {
		return "", apperrors.InvalidInput("title must contain at least one letter or digit")
	}
	return s, nil
}

// CreateProduct stores a new product posted by postedBy, deriving its slug
// from the title.
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput, postedBy string) (*domain.Product, error) {
	if input.Title == nil {
		return nil, apperrors.InvalidInput("product title is required")
	}
	sl, err := titleSlug(*input.Title)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{Slug: sl}
	input.apply(product)
	if postedBy != "" {
		product.PostedBy = &domain.Ref{ID: postedBy}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.cache.Invalidate(ctx)

	if err := s.events.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)
	return product, nil
}

// GetProduct looks a product up by id, falling back to slug.
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	if domain.IsObjectID(idOrSlug) {
		product, err := s.repo.GetByID(ctx, idOrSlug)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get product by id: %w", err)
		}
	}
	product, err := s.repo.GetBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// UpdateProduct edits the product with slug. A title change re-derives the
// slug.
func (s *ProductService) UpdateProduct(ctx context.Context, currentSlug string, input *ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, currentSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	if input.Title != nil && *input.Title != product.Title {
		sl, err := titleSlug(*input.Title)
		if err != nil {
			return nil, err
		}
		product.Slug = sl
	}
	input.apply(product)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.cache.Invalidate(ctx)

	if err := s.events.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)
	return product, nil
}

// DeleteProduct removes the product with slug and returns it.
func (s *ProductService) DeleteProduct(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.repo.DeleteBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	s.cache.Invalidate(ctx)

	if err := s.events.PublishProductDeleted(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)
	return product, nil
}

// ListNewest returns the count most recently created products.
func (s *ProductService) ListNewest(ctx context.Context, count *int) ([]domain.Product, error) {
	limit, err := s.newest.Limit(count)
	if err != nil {
		return nil, fieldError("count", err)
	}
	products, err := s.repo.List(ctx, repository.ListOptions{Sort: domain.SortCreatedAt, Desc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list newest products: %w", err)
	}
	return products, nil
}

// ListProducts returns a sorted page of products with totals.
func (s *ProductService) ListProducts(ctx context.Context, in ListInput) (pagination.Result[domain.Product], error) {
	var zero pagination.Result[domain.Product]

	sortField := in.Sort
	if sortField == "" {
		sortField = domain.SortCreatedAt
	}
	if !domain.IsValidSort(sortField) {
		return zero, fieldError("sort", fmt.Errorf("must be one of: %s, %s, %s, %s, %s",
			domain.SortCreatedAt, domain.SortUpdatedAt, domain.SortPrice, domain.SortSold, domain.SortTitle))
	}
	desc := true
	switch in.Order {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return zero, fieldError("order", errors.New("must be one of: asc, desc"))
	}

	if in.Page != nil && *in.Page < 1 {
		return zero, fieldError("page", errors.New("must be at least 1"))
	}
	if _, err := s.listing.Limit(in.PerPage); err != nil {
		return zero, fieldError("per_page", err)
	}
	params, err := s.listing.Params(in.Page, in.PerPage)
	if err != nil {
		return zero, apperrors.InvalidInput(err.Error())
	}

	products, err := s.repo.List(ctx, repository.ListOptions{
		Sort:   sortField,
		Desc:   desc,
		Offset: params.Offset,
		Limit:  params.PerPage,
	})
	if err != nil {
		return zero, fmt.Errorf("list products: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return zero, fmt.Errorf("count products: %w", err)
	}
	return pagination.NewResult(products, total, params), nil
}

// CountProducts returns the number of products in the catalog.
func (s *ProductService) CountProducts(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// ListRelated returns up to three other products in the same category.
func (s *ProductService) ListRelated(ctx context.Context, productID string) ([]domain.Product, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if product.CategoryID() == "" {
		return []domain.Product{}, nil
	}
	related, err := s.repo.ListRelated(ctx, product.ID, product.CategoryID(), relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("list related products: %w", err)
	}
	return related, nil
}

// RateProduct records userID's star for the product, replacing any earlier
// rating by the same user.
func (s *ProductService) RateProduct(ctx context.Context, productID, userID string, star int) (*domain.Product, error) {
	if !domain.ValidStar(star) {
		return nil, fieldError("star", fmt.Errorf("must be between %d and %d", domain.MinStars, domain.MaxStars))
	}

	product, err := s.repo.UpsertRating(ctx, productID, userID, star)
	if err != nil {
		return nil, fmt.Errorf("rate product: %w", err)
	}
	s.cache.Invalidate(ctx)

	if err := s.events.PublishProductRated(ctx, product, userID, star); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product rated",
		slog.String("product_id", product.ID),
		slog.String("user_id", userID),
		slog.Int("star", star),
	)
	return product, nil
}
