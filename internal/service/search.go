package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/cache"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

// SearchService runs exactly one filter per request against the product
// store.
type SearchService struct {
	products repository.ProductRepository
	cache    cache.SearchCache
	logger   *slog.Logger
}

// NewSearchService creates a search service. A nil cache disables caching.
func NewSearchService(products repository.ProductRepository, c cache.SearchCache, logger *slog.Logger) *SearchService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SearchService{products: products, cache: c, logger: logger}
}

// Search applies f and returns the matching products with their refs joined.
func (s *SearchService) Search(ctx context.Context, f domain.Filter) (_ []domain.Product, err error) {
	kind := string(f.Kind)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		searchRequests.WithLabelValues(kind, outcome).Inc()
		searchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	key := f.Key()
	cached, gen, ok := s.cache.Get(ctx, key)
	if ok {
		return cached, nil
	}

	products, err := s.dispatch(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search by %s: %w", kind, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.cache.Set(ctx, gen, key, products)

	s.logger.DebugContext(ctx, "search served",
		slog.String("kind", kind),
		slog.Int("results", len(products)),
	)
	return products, nil
}

func (s *SearchService) dispatch(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	switch f.Kind {
	case domain.FilterText:
		return s.products.SearchText(ctx, f.Query, f.Limit)
	case domain.FilterPrice:
		return s.products.FindByPriceRange(ctx, f.Price, f.Limit)
	case domain.FilterCategory:
		return s.products.FindByAttribute(ctx, repository.AttrCategory, f.CategoryID, f.Limit)
	case domain.FilterStars:
		return s.byStars(ctx, f.Stars, f.Limit)
	case domain.FilterShipping:
		return s.products.FindByAttribute(ctx, repository.AttrShipping, f.Shipping, f.Limit)
	case domain.FilterColor:
		return s.products.FindByAttribute(ctx, repository.AttrColor, f.Color, f.Limit)
	case domain.FilterBrand:
		return s.products.FindByAttribute(ctx, repository.AttrBrand, f.Brand, f.Limit)
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("unknown filter kind %q", f.Kind))
}

// byStars finds the ids whose floored average equals stars, then re-reads
// those products with their refs, keeping aggregation order.
func (s *SearchService) byStars(ctx context.Context, stars, limit int) ([]domain.Product, error) {
	ids, err := s.products.FloorAverageIDs(ctx, stars, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	return s.products.FindByIDs(ctx, ids)
}
