// Package mongodb implements the catalog repositories on a MongoDB database.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

const (
	collProducts   = "products"
	collCategories = "categories"
	collSubs       = "subs"
	collUsers      = "users"
)

// opContext bounds a single store call.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes creates the indexes queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := map[string][]mongo.IndexModel{
		collProducts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		collCategories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range models {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

type refDoc struct {
	ID   bson.ObjectID `bson:"_id"`
	Name string        `bson:"name"`
	Slug string        `bson:"slug,omitempty"`
}

func (d refDoc) toDomain() domain.Ref {
	return domain.Ref{ID: d.ID.Hex(), Name: d.Name, Slug: d.Slug}
}

type imageDoc struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id,omitempty"`
}

type ratingDoc struct {
	Star     int           `bson:"star"`
	PostedBy bson.ObjectID `bson:"postedBy"`
}

type productDoc struct {
	ID          bson.ObjectID   `bson:"_id"`
	Title       string          `bson:"title"`
	Slug        string          `bson:"slug"`
	Description string          `bson:"description"`
	Price       float64         `bson:"price"`
	Category    bson.ObjectID   `bson:"category,omitempty"`
	Subs        []bson.ObjectID `bson:"subs"`
	Brand       string          `bson:"brand"`
	Color       string          `bson:"color"`
	Shipping    bool            `bson:"shipping"`
	Quantity    int             `bson:"quantity"`
	Sold        int             `bson:"sold"`
	Images      []imageDoc      `bson:"images"`
	Ratings     []ratingDoc     `bson:"ratings"`
	PostedBy    bson.ObjectID   `bson:"postedBy,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`

	// Filled by joinStages on reads, never stored.
	CategoryRef []refDoc `bson:"categoryRef,omitempty"`
	SubRefs     []refDoc `bson:"subRefs,omitempty"`
	PostedByRef []refDoc `bson:"postedByRef,omitempty"`
}

func objectIDs(hexes []string) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid object id %q", h))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalID parses a ref id; a nil ref or empty id is the zero ObjectID.
func optionalID(ref *domain.Ref) (bson.ObjectID, error) {
	if ref == nil || ref.ID == "" {
		return bson.NilObjectID, nil
	}
	id, err := bson.ObjectIDFromHex(ref.ID)
	if err != nil {
		return bson.NilObjectID, apperrors.InvalidInput(fmt.Sprintf("invalid object id %q", ref.ID))
	}
	return id, nil
}

func newProductDoc(p *domain.Product) (productDoc, error) {
	category, err := optionalID(p.Category)
	if err != nil {
		return productDoc{}, err
	}
	postedBy, err := optionalID(p.PostedBy)
	if err != nil {
		return productDoc{}, err
	}
	subIDs := make([]string, len(p.Subs))
	for i, s := range p.Subs {
		subIDs[i] = s.ID
	}
	subs, err := objectIDs(subIDs)
	if err != nil {
		return productDoc{}, err
	}

	doc := productDoc{
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Category:    category,
		Subs:        subs,
		Brand:       p.Brand,
		Color:       p.Color,
		Shipping:    p.Shipping,
		Quantity:    p.Quantity,
		Sold:        p.Sold,
		Images:      make([]imageDoc, len(p.Images)),
		Ratings:     []ratingDoc{},
		PostedBy:    postedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i, img := range p.Images {
		doc.Images[i] = imageDoc{URL: img.URL, PublicID: img.PublicID}
	}
	return doc, nil
}

// toDomain converts the document, taking names from the joined refs when
// present and keeping bare ids for references whose target is gone.
func (d *productDoc) toDomain() domain.Product {
	p := domain.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       d.Price,
		Brand:       d.Brand,
		Color:       d.Color,
		Shipping:    d.Shipping,
		Quantity:    d.Quantity,
		Sold:        d.Sold,
		Subs:        make([]domain.Ref, 0, len(d.Subs)),
		Images:      make([]domain.Image, 0, len(d.Images)),
		Ratings:     make([]domain.Rating, 0, len(d.Ratings)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if !d.Category.IsZero() {
		p.Category = &domain.Ref{ID: d.Category.Hex()}
	}
	if !d.PostedBy.IsZero() {
		p.PostedBy = &domain.Ref{ID: d.PostedBy.Hex()}
	}
	for _, s := range d.Subs {
		p.Subs = append(p.Subs, domain.Ref{ID: s.Hex()})
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, domain.Image{URL: img.URL, PublicID: img.PublicID})
	}
	for _, r := range d.Ratings {
		p.Ratings = append(p.Ratings, domain.Rating{Star: r.Star, PostedBy: r.PostedBy.Hex()})
	}
	if len(d.CategoryRef) > 0 {
		ref := d.CategoryRef[0].toDomain()
		p.Category = &ref
	}
	if len(d.PostedByRef) > 0 {
		ref := d.PostedByRef[0].toDomain()
		p.PostedBy = &ref
	}
	names := make(map[bson.ObjectID]refDoc, len(d.SubRefs))
	for _, s := range d.SubRefs {
		names[s.ID] = s
	}
	for i, id := range d.Subs {
		if s, ok := names[id]; ok {
			p.Subs[i] = s.toDomain()
		}
	}
	return p
}

type categoryDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Slug      string        `bson:"slug"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *categoryDoc) toDomain() domain.Category {
	return domain.Category{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Slug:      d.Slug,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type userDoc struct {
	ID    bson.ObjectID `bson:"_id"`
	Name  string        `bson:"name"`
	Email string        `bson:"email"`
	Role  string        `bson:"role"`
}

func (d *userDoc) toDomain() domain.User {
	role := d.Role
	if role == "" {
		role = domain.RoleSubscriber
	}
	return domain.User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email, Role: role}
}

// mapFindErr turns a missing document into a NotFound error.
func mapFindErr(err error, resource, key string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound(resource, key)
	}
	return err
}
