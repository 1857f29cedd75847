package memory

import (
	"context"
	"sort"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository over a Store.
type CategoryRepository struct {
	s *Store
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) slugTaken(slug, exceptID string) bool {
	for id, c := range r.s.categories {
		if id != exceptID && c.Slug == slug {
			return true
		}
	}
	return false
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(category.Slug, "") {
		return apperrors.AlreadyExists("category", "slug", category.Slug)
	}
	now := r.s.now()
	category.ID = newID()
	category.CreatedAt = now
	category.UpdatedAt = now

	c := *category
	r.s.categories[c.ID] = &c
	return nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			out := *c
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("category", slug)
}

// List returns categories newest first.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[category.ID]
	if !ok {
		return apperrors.NotFound("category", category.ID)
	}
	if r.slugTaken(category.Slug, category.ID) {
		return apperrors.AlreadyExists("category", "slug", category.Slug)
	}
	existing.Name = category.Name
	existing.Slug = category.Slug
	existing.UpdatedAt = r.s.now()
	*category = *existing
	return nil
}

func (r *CategoryRepository) DeleteBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.categories {
		if c.Slug == slug {
			delete(r.s.categories, id)
			out := *c
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("category", slug)
}

// UserDirectory implements repository.UserDirectory over a Store.
type UserDirectory struct {
	s *Store
}

var _ repository.UserDirectory = (*UserDirectory)(nil)

func (d *UserDirectory) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	for _, u := range d.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}
