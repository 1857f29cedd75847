package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/cache"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

// CategoryService implements category management.
type CategoryService struct {
	repo   repository.CategoryRepository
	cache  cache.SearchCache
	logger *slog.Logger
}

// NewCategoryService creates a category service. Renames and deletes retire
// cached search results, which embed category names.
func NewCategoryService(repo repository.CategoryRepository, c cache.SearchCache, logger *slog.Logger) *CategoryService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CategoryService{repo: repo, cache: c, logger: logger}
}

func categorySlug(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperrors.InvalidInput("category name is required")
	}
	sl, err := titleSlug(name)
	if err != nil {
		return "", "", apperrors.InvalidInput("category name must contain at least one letter or digit")
	}
	return name, sl, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name, sl, err := categorySlug(name)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{Name: name, Slug: sl}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// RenameCategory changes the name of the category with slug, re-deriving the
// slug from the new name.
func (s *CategoryService) RenameCategory(ctx context.Context, slug, name string) (*domain.Category, error) {
	name, sl, err := categorySlug(name)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	category.Name, category.Slug = name, sl
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.InfoContext(ctx, "category renamed",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.repo.DeleteBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}
