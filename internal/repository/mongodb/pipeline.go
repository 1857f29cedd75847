package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
)

// lookupRef joins a shallow projection of from into as.
func lookupRef(from, localField, as string, fields ...string) bson.D {
	project := bson.D{}
	for _, f := range fields {
		project = append(project, bson.E{Key: f, Value: 1})
	}
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: project}}}},
		{Key: "as", Value: as},
	}}}
}

// joinStages attaches category, subs and poster refs to each product.
func joinStages() []bson.D {
	return []bson.D{
		lookupRef(collCategories, "category", "categoryRef", "name", "slug"),
		lookupRef(collSubs, "subs", "subRefs", "name", "slug"),
		lookupRef(collUsers, "postedBy", "postedByRef", "name"),
	}
}

func limitStage(limit int) bson.D {
	return bson.D{{Key: "$limit", Value: int64(limit)}}
}

// findPipeline matches filter, caps the result and joins refs.
func findPipeline(filter bson.D, limit int) mongo.Pipeline {
	p := mongo.Pipeline{bson.D{{Key: "$match", Value: filter}}}
	if limit > 0 {
		p = append(p, limitStage(limit))
	}
	return append(p, joinStages()...)
}

// textSearchPipeline ranks full-text matches by relevance.
func textSearchPipeline(query string, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}}},
	}
	if limit > 0 {
		p = append(p, limitStage(limit))
	}
	return append(p, joinStages()...)
}

// floorAveragePipeline projects floor(avg(ratings.star)) per product and
// keeps the ids equal to bucket. Unrated products average to null.
func floorAveragePipeline(bucket, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "floorAverage", Value: bson.D{{Key: "$floor", Value: bson.D{{Key: "$avg", Value: "$ratings.star"}}}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "floorAverage", Value: bucket}}}},
	}
	if limit > 0 {
		p = append(p, limitStage(limit))
	}
	return p
}

// listPipeline sorts with _id as a tie-breaker, then windows and joins.
func listPipeline(opts repository.ListOptions) mongo.Pipeline {
	field := opts.Sort
	if !domain.IsValidSort(field) {
		field = domain.SortCreatedAt
	}
	dir := 1
	if opts.Desc {
		dir = -1
	}
	p := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}}},
	}
	if opts.Offset > 0 {
		p = append(p, bson.D{{Key: "$skip", Value: int64(opts.Offset)}})
	}
	if opts.Limit > 0 {
		p = append(p, limitStage(opts.Limit))
	}
	return append(p, joinStages()...)
}

// ratingUpsertUpdate is an update pipeline that rewrites the star of the
// rating posted by user, or appends one when the user has none. Running it
// as a single update keeps concurrent calls from duplicating entries.
func ratingUpsertUpdate(user bson.ObjectID, star int) mongo.Pipeline {
	ratings := bson.D{{Key: "$ifNull", Value: bson.A{"$ratings", bson.A{}}}}
	posters := bson.D{{Key: "$ifNull", Value: bson.A{"$ratings.postedBy", bson.A{}}}}

	replace := bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: ratings},
		{Key: "as", Value: "r"},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{"$$r.postedBy", user}}}},
			{Key: "then", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{"$$r", bson.D{{Key: "star", Value: star}}}}}},
			{Key: "else", Value: "$$r"},
		}}}},
	}}}
	appendOne := bson.D{{Key: "$concatArrays", Value: bson.A{
		ratings,
		bson.A{bson.D{{Key: "star", Value: star}, {Key: "postedBy", Value: user}}},
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "ratings", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{user, posters}}}},
				{Key: "then", Value: replace},
				{Key: "else", Value: appendOne},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
}

// attributeFilter builds the exact-match filter for attr.
func attributeFilter(attr repository.Attribute, value any) (bson.D, error) {
	switch attr {
	case repository.AttrCategory:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("category filter wants a string id, got %T", value)
		}
		id, err := bson.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("category filter: %w", err)
		}
		return bson.D{{Key: "category", Value: id}}, nil
	case repository.AttrShipping:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("shipping filter wants a bool, got %T", value)
		}
		return bson.D{{Key: "shipping", Value: b}}, nil
	case repository.AttrColor, repository.AttrBrand:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s filter wants a string, got %T", attr, value)
		}
		return bson.D{{Key: string(attr), Value: s}}, nil
	}
	return nil, fmt.Errorf("unsupported attribute %q", attr)
}

// priceFilter matches prices inside r, both bounds inclusive.
func priceFilter(r domain.PriceRange) bson.D {
	return bson.D{{Key: "price", Value: bson.D{
		{Key: "$gte", Value: r.Min},
		{Key: "$lte", Value: r.Max},
	}}}
}
