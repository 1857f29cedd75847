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

// ProductRepository implements repository.ProductRepository using MongoDB.
type ProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a MongoDB-backed product repository. Each call
// is bounded by timeout when it is positive.
func NewProductRepository(db *mongo.Database, timeout time.Duration) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collProducts), timeout: timeout}
}

// aggregate runs pipeline and decodes the joined products.
func (r *ProductRepository) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline) (_ []domain.Product, err error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, op, database.Statement(pipeline))
	defer func() { end(err) }()

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.D, key string) (*domain.Product, error) {
	products, err := r.aggregate(ctx, "find_one", findPipeline(filter, 1))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound("product", key)
	}
	return &products[0], nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (err error) {
	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.ID = bson.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "insert", database.Statement(bson.D{{Key: "slug", Value: doc.Slug}}))
	defer func() { end(err) }()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "slug", product.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	product.ID = doc.ID.Hex()
	product.CreatedAt, product.UpdatedAt = now, now
	product.Normalize()
	return nil
}

// GetByID retrieves a product by its id. Malformed ids cannot exist.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("product", id)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}}, slug)
}

// Update replaces the editable fields; ratings, poster and creation time are
// left as stored.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (err error) {
	oid, err := bson.ObjectIDFromHex(product.ID)
	if err != nil {
		return apperrors.NotFound("product", product.ID)
	}
	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	set := bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "slug", Value: doc.Slug},
		{Key: "description", Value: doc.Description},
		{Key: "price", Value: doc.Price},
		{Key: "subs", Value: doc.Subs},
		{Key: "brand", Value: doc.Brand},
		{Key: "color", Value: doc.Color},
		{Key: "shipping", Value: doc.Shipping},
		{Key: "quantity", Value: doc.Quantity},
		{Key: "sold", Value: doc.Sold},
		{Key: "images", Value: doc.Images},
		{Key: "updatedAt", Value: now},
	}
	update := bson.D{{Key: "$set", Value: set}}
	if doc.Category.IsZero() {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "category", Value: ""}}})
	} else {
		set = append(set, bson.E{Key: "category", Value: doc.Category})
		update[0].Value = set
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "update", database.Statement(update))
	defer func() { end(err) }()

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "slug", product.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", product.ID)
	}
	product.UpdatedAt = now
	return nil
}

// DeleteBySlug removes a product and returns the removed document.
func (r *ProductRepository) DeleteBySlug(ctx context.Context, slug string) (_ *domain.Product, err error) {
	filter := bson.D{{Key: "slug", Value: slug}}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "delete", database.Statement(filter))
	defer func() { end(err) }()

	var doc productDoc
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, mapFindErr(err, "product", slug)
	}
	p := doc.toDomain()
	return &p, nil
}

// List returns a sorted window of products.
func (r *ProductRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Product, error) {
	return r.aggregate(ctx, "list", listPipeline(opts))
}

// Count returns the collection's document count from its metadata.
func (r *ProductRepository) Count(ctx context.Context) (_ int, err error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "count", "{}")
	defer func() { end(err) }()

	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(n), nil
}

func (r *ProductRepository) SearchText(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return r.aggregate(ctx, "text_search", textSearchPipeline(query, limit))
}

func (r *ProductRepository) FindByPriceRange(ctx context.Context, pr domain.PriceRange, limit int) ([]domain.Product, error) {
	return r.aggregate(ctx, "find_price", findPipeline(priceFilter(pr), limit))
}

func (r *ProductRepository) FindByAttribute(ctx context.Context, attr repository.Attribute, value any, limit int) ([]domain.Product, error) {
	filter, err := attributeFilter(attr, value)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return r.aggregate(ctx, "find_"+string(attr), findPipeline(filter, limit))
}

// FloorAverageIDs runs the rating aggregation and returns matching ids in
// aggregation order.
func (r *ProductRepository) FloorAverageIDs(ctx context.Context, bucket, limit int) (_ []string, err error) {
	pipeline := floorAveragePipeline(bucket, limit)

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "floor_average", database.Statement(pipeline))
	defer func() { end(err) }()

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	var rows []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode rating aggregates: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID.Hex()
	}
	return ids, nil
}

// FindByIDs fetches products and returns them in the order of ids.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	oids, err := objectIDs(ids)
	if err != nil {
		return nil, err
	}
	found, err := r.aggregate(ctx, "find_ids",
		findPipeline(bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}}, 0))
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids), nil
}

func orderByIDs(products []domain.Product, ids []string) []domain.Product {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// UpsertRating applies the rating in one update pipeline, then reads the
// product back with its refs joined.
func (r *ProductRepository) UpsertRating(ctx context.Context, productID, userID string, star int) (*domain.Product, error) {
	pid, err := bson.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.NotFound("product", productID)
	}
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid user id %q", userID))
	}
	if err := r.applyRating(ctx, pid, uid, star); err != nil {
		return nil, mapFindErr(err, "product", productID)
	}
	return r.GetByID(ctx, productID)
}

func (r *ProductRepository) applyRating(ctx context.Context, pid, uid bson.ObjectID, star int) (err error) {
	update := ratingUpsertUpdate(uid, star)

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collProducts, "rate", database.Statement(update))
	defer func() { end(err) }()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.D{{Key: "_id", Value: 1}})
	return r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: pid}}, update, opts).Err()
}

func (r *ProductRepository) ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error) {
	pid, err := bson.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.NotFound("product", productID)
	}
	cid, err := bson.ObjectIDFromHex(categoryID)
	if err != nil {
		return []domain.Product{}, nil
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: pid}}},
		{Key: "category", Value: cid},
	}
	return r.aggregate(ctx, "related", findPipeline(filter, limit))
}
