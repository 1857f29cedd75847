package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/cache"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
)

// --- Mock Repository ---

type mockProductRepository struct {
	mock.Mock
}

func productsResult(args mock.Arguments) ([]domain.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func productResult(args mock.Arguments) (*domain.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return productResult(m.Called(ctx, id))
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return productResult(m.Called(ctx, slug))
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepository) DeleteBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return productResult(m.Called(ctx, slug))
}

func (m *mockProductRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, opts))
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) SearchText(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, query, limit))
}

func (m *mockProductRepository) FindByPriceRange(ctx context.Context, r domain.PriceRange, limit int) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, r, limit))
}

func (m *mockProductRepository) FindByAttribute(ctx context.Context, attr repository.Attribute, value any, limit int) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, attr, value, limit))
}

func (m *mockProductRepository) FloorAverageIDs(ctx context.Context, bucket, limit int) ([]string, error) {
	args := m.Called(ctx, bucket, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, ids))
}

func (m *mockProductRepository) UpsertRating(ctx context.Context, productID, userID string, star int) (*domain.Product, error) {
	return productResult(m.Called(ctx, productID, userID, star))
}

func (m *mockProductRepository) ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error) {
	return productsResult(m.Called(ctx, productID, categoryID, limit))
}

// --- Mock Events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishProductCreated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductUpdated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductDeleted(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEvents) PublishProductRated(ctx context.Context, p *domain.Product, userID string, star int) error {
	return m.Called(ctx, p, userID, star).Error(0)
}

// quietEvents accepts every event.
func quietEvents() *mockEvents {
	m := &mockEvents{}
	m.On("PublishProductCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("PublishProductUpdated", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("PublishProductDeleted", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("PublishProductRated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// --- Cache spy ---

type spyCache struct {
	entries       map[string][]domain.Product
	gen           cache.Generation
	invalidations int
}

func newSpyCache() *spyCache {
	return &spyCache{entries: map[string][]domain.Product{}}
}

func (c *spyCache) Get(_ context.Context, key string) ([]domain.Product, cache.Generation, bool) {
	p, ok := c.entries[key]
	return p, c.gen, ok
}

func (c *spyCache) Set(_ context.Context, gen cache.Generation, key string, p []domain.Product) {
	if gen != c.gen {
		return
	}
	c.entries[key] = p
}

func (c *spyCache) Invalidate(context.Context) {
	c.invalidations++
	c.gen++
	c.entries = map[string][]domain.Product{}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func ptr[T any](v T) *T { return &v }
