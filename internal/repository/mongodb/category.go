package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/database"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository using MongoDB.
type CategoryRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *mongo.Database, timeout time.Duration) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(collCategories), timeout: timeout}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (err error) {
	now := time.Now().UTC()
	doc := categoryDoc{
		ID:        bson.NewObjectID(),
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collCategories, "insert", database.Statement(bson.D{{Key: "slug", Value: doc.Slug}}))
	defer func() { end(err) }()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("category", "slug", category.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	*category = doc.toDomain()
	return nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Category, err error) {
	filter := bson.D{{Key: "slug", Value: slug}}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collCategories, "find_one", database.Statement(filter))
	defer func() { end(err) }()

	var doc categoryDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapFindErr(err, "category", slug)
	}
	c := doc.toDomain()
	return &c, nil
}

// List returns every category, newest first.
func (r *CategoryRepository) List(ctx context.Context) (_ []domain.Category, err error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collCategories, "find", "{}")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]domain.Category, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (err error) {
	oid, err := bson.ObjectIDFromHex(category.ID)
	if err != nil {
		return apperrors.NotFound("category", category.ID)
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: category.Name},
		{Key: "slug", Value: category.Slug},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collCategories, "update", database.Statement(update))
	defer func() { end(err) }()

	var doc categoryDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("category", "slug", category.Slug)
		}
		return mapFindErr(err, "category", category.ID)
	}
	*category = doc.toDomain()
	return nil
}

func (r *CategoryRepository) DeleteBySlug(ctx context.Context, slug string) (_ *domain.Category, err error) {
	filter := bson.D{{Key: "slug", Value: slug}}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collCategories, "delete", database.Statement(filter))
	defer func() { end(err) }()

	var doc categoryDoc
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, mapFindErr(err, "category", slug)
	}
	c := doc.toDomain()
	return &c, nil
}
