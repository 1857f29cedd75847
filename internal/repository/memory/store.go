// Package memory is a process-local store with the same semantics as the
// document store. It backs development runs and scenario tests.
package memory

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
)

type productEntry struct {
	seq     uint64
	product domain.Product
}

// Store holds every collection behind one lock so joins see a consistent
// snapshot.
type Store struct {
	mu         sync.RWMutex
	seq        uint64
	now        func() time.Time
	products   map[string]*productEntry
	categories map[string]*domain.Category
	subs       map[string]*domain.SubCategory
	users      map[string]*domain.User
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		products:   make(map[string]*productEntry),
		categories: make(map[string]*domain.Category),
		subs:       make(map[string]*domain.SubCategory),
		users:      make(map[string]*domain.User),
	}
}

func newID() string {
	return bson.NewObjectID().Hex()
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// AddUser registers a user, assigning an id when u.ID is empty.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Role == "" {
		u.Role = domain.RoleSubscriber
	}
	s.users[u.ID] = &u
	return u
}

// AddSubCategory registers a sub-category for joins.
func (s *Store) AddSubCategory(sub domain.SubCategory) domain.SubCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = newID()
	}
	s.subs[sub.ID] = &sub
	return sub
}

// Products returns the product repository view of the store.
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{s: s}
}

// Categories returns the category repository view of the store.
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{s: s}
}

// Users returns the user directory view of the store.
func (s *Store) Users() *UserDirectory {
	return &UserDirectory{s: s}
}

// join copies p and fills its refs from the other collections. Callers hold
// at least the read lock.
func (s *Store) join(p domain.Product) domain.Product {
	out := p
	if p.Category != nil {
		ref := domain.Ref{ID: p.Category.ID}
		if c, ok := s.categories[p.Category.ID]; ok {
			ref.Name, ref.Slug = c.Name, c.Slug
		}
		out.Category = &ref
	}
	out.Subs = make([]domain.Ref, 0, len(p.Subs))
	for _, sub := range p.Subs {
		ref := domain.Ref{ID: sub.ID}
		if sc, ok := s.subs[sub.ID]; ok {
			ref.Name, ref.Slug = sc.Name, sc.Slug
		}
		out.Subs = append(out.Subs, ref)
	}
	if p.PostedBy != nil {
		ref := domain.Ref{ID: p.PostedBy.ID}
		if u, ok := s.users[p.PostedBy.ID]; ok {
			ref.Name = u.Name
		}
		out.PostedBy = &ref
	}
	out.Images = append([]domain.Image{}, p.Images...)
	out.Ratings = append([]domain.Rating{}, p.Ratings...)
	return out
}
