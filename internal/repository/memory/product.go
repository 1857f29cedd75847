package memory

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

// ProductRepository implements repository.ProductRepository over a Store.
type ProductRepository struct {
	s *Store
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) slugTaken(slug, exceptID string) bool {
	for id, e := range r.s.products {
		if id != exceptID && e.product.Slug == slug {
			return true
		}
	}
	return false
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(product.Slug, "") {
		return apperrors.AlreadyExists("product", "slug", product.Slug)
	}

	now := r.s.now()
	product.ID = newID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Normalize()

	r.s.products[product.ID] = &productEntry{seq: r.s.nextSeq(), product: *product}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p := r.s.join(e.product)
	return &p, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.products {
		if e.product.Slug == slug {
			p := r.s.join(e.product)
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.products[product.ID]
	if !ok {
		return apperrors.NotFound("product", product.ID)
	}
	if r.slugTaken(product.Slug, product.ID) {
		return apperrors.AlreadyExists("product", "slug", product.Slug)
	}

	updated := *product
	updated.Ratings = e.product.Ratings
	updated.PostedBy = e.product.PostedBy
	updated.CreatedAt = e.product.CreatedAt
	updated.UpdatedAt = r.s.now()
	updated.Normalize()
	e.product = updated

	product.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *ProductRepository) DeleteBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, e := range r.s.products {
		if e.product.Slug == slug {
			p := r.s.join(e.product)
			delete(r.s.products, id)
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

// inOrder returns entries sorted by insertion, which is the natural order of
// unsorted queries.
func (r *ProductRepository) inOrder() []*productEntry {
	entries := make([]*productEntry, 0, len(r.s.products))
	for _, e := range r.s.products {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}

func (r *ProductRepository) collect(limit int, match func(*domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, e := range r.inOrder() {
		if limit > 0 && len(out) == limit {
			break
		}
		if match(&e.product) {
			out = append(out, r.s.join(e.product))
		}
	}
	return out
}

func (r *ProductRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.inOrder()
	less := lessBy(opts.Sort)
	sort.SliceStable(entries, func(i, j int) bool {
		if opts.Desc {
			return less(&entries[j].product, &entries[i].product)
		}
		return less(&entries[i].product, &entries[j].product)
	})

	out := []domain.Product{}
	for i := opts.Offset; i < len(entries); i++ {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		out = append(out, r.s.join(entries[i].product))
	}
	return out, nil
}

func lessBy(field string) func(a, b *domain.Product) bool {
	switch field {
	case domain.SortPrice:
		return func(a, b *domain.Product) bool { return a.Price < b.Price }
	case domain.SortSold:
		return func(a, b *domain.Product) bool { return a.Sold < b.Sold }
	case domain.SortTitle:
		return func(a, b *domain.Product) bool { return a.Title < b.Title }
	case domain.SortUpdatedAt:
		return func(a, b *domain.Product) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return func(a, b *domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
}

// SearchText scores each product by how many query terms occur in its title
// and description, any term being enough to match.
func (r *ProductRepository) SearchText(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := terms(query)
	type scored struct {
		entry *productEntry
		score int
	}
	var hits []scored
	for _, e := range r.inOrder() {
		score := 0
		for _, t := range terms(e.product.Title + " " + e.product.Description) {
			for _, w := range wanted {
				if t == w {
					score++
				}
			}
		}
		if score > 0 {
			hits = append(hits, scored{entry: e, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := []domain.Product{}
	for _, h := range hits {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.s.join(h.entry.product))
	}
	return out, nil
}

func (r *ProductRepository) FindByPriceRange(ctx context.Context, pr domain.PriceRange, limit int) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(limit, func(p *domain.Product) bool { return pr.Contains(p.Price) }), nil
}

func (r *ProductRepository) FindByAttribute(ctx context.Context, attr repository.Attribute, value any, limit int) ([]domain.Product, error) {
	var match func(*domain.Product) bool
	switch attr {
	case repository.AttrCategory:
		match = func(p *domain.Product) bool { return p.CategoryID() == value }
	case repository.AttrShipping:
		match = func(p *domain.Product) bool { return p.Shipping == value }
	case repository.AttrColor:
		match = func(p *domain.Product) bool { return p.Color == value }
	case repository.AttrBrand:
		match = func(p *domain.Product) bool { return p.Brand == value }
	default:
		return nil, apperrors.InvalidInput("unsupported attribute " + string(attr))
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(limit, match), nil
}

func (r *ProductRepository) FloorAverageIDs(ctx context.Context, bucket, limit int) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []string{}
	for _, e := range r.inOrder() {
		if limit > 0 && len(ids) == limit {
			break
		}
		if len(e.product.Ratings) > 0 && domain.FloorAverage(e.product.Ratings) == bucket {
			ids = append(ids, e.product.ID)
		}
	}
	return ids, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.s.products[id]; ok {
			out = append(out, r.s.join(e.product))
		}
	}
	return out, nil
}

func (r *ProductRepository) UpsertRating(ctx context.Context, productID, userID string, star int) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.products[productID]
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}
	e.product.Ratings = domain.UpsertRating(e.product.Ratings, userID, star)
	e.product.UpdatedAt = r.s.now()
	p := r.s.join(e.product)
	return &p, nil
}

func (r *ProductRepository) ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(limit, func(p *domain.Product) bool {
		return p.ID != productID && p.CategoryID() == categoryID
	}), nil
}
