package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

func stageNames(t *testing.T, pipeline []bson.D) []string {
	t.Helper()
	names := make([]string, len(pipeline))
	for i, stage := range pipeline {
		require.Len(t, stage, 1)
		names[i] = stage[0].Key
	}
	return names
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	require.NoError(t, err)
	return string(out)
}

func TestFloorAveragePipeline(t *testing.T) {
	p := floorAveragePipeline(4, 12)

	assert.Equal(t, []string{"$project", "$match", "$limit"}, stageNames(t, p))
	js := toJSON(t, p)
	assert.Contains(t, js, `"floorAverage":{"$floor":{"$avg":"$ratings.star"}}`)
	assert.Contains(t, js, `{"$match":{"floorAverage":4}}`)
	assert.Contains(t, js, `{"$limit":12}`)
}

func TestTextSearchPipeline(t *testing.T) {
	p := textSearchPipeline("red shoes", 12)

	assert.Equal(t, []string{"$match", "$sort", "$limit", "$lookup", "$lookup", "$lookup"}, stageNames(t, p))
	js := toJSON(t, p)
	assert.Contains(t, js, `"$text":{"$search":"red shoes"}`)
	assert.Contains(t, js, `"score":{"$meta":"textScore"}`)
}

func TestFindPipeline_JoinsShallowRefs(t *testing.T) {
	p := findPipeline(priceFilter(domain.PriceRange{Min: 10, Max: 20}), 12)

	assert.Equal(t, []string{"$match", "$limit", "$lookup", "$lookup", "$lookup"}, stageNames(t, p))
	js := toJSON(t, p)
	assert.Contains(t, js, `"price":{"$gte":10`)
	assert.Contains(t, js, `"from":"categories"`)
	assert.Contains(t, js, `"from":"users","localField":"postedBy","foreignField":"_id","pipeline":[{"$project":{"name":1}}]`)

	assert.Equal(t, []string{"$match", "$lookup", "$lookup", "$lookup"}, stageNames(t, findPipeline(bson.D{}, 0)))
}

func TestListPipeline(t *testing.T) {
	p := listPipeline(repository.ListOptions{Sort: domain.SortSold, Desc: true, Offset: 3, Limit: 3})
	assert.Equal(t, []string{"$sort", "$skip", "$limit", "$lookup", "$lookup", "$lookup"}, stageNames(t, p))
	assert.Contains(t, toJSON(t, p), `{"$sort":{"sold":-1,"_id":-1}}`)

	p = listPipeline(repository.ListOptions{Sort: "password", Limit: 3})
	assert.Contains(t, toJSON(t, p), `{"$sort":{"createdAt":1,"_id":1}}`)
}

func TestRatingUpsertUpdate(t *testing.T) {
	user := bson.NewObjectID()
	p := ratingUpsertUpdate(user, 5)

	require.Len(t, p, 1)
	assert.Equal(t, "$set", p[0][0].Key)
	js := toJSON(t, p)
	assert.Contains(t, js, `"$in":[{"$oid":"`+user.Hex()+`"},{"$ifNull":["$ratings.postedBy",[]]}]`)
	assert.Contains(t, js, `"$mergeObjects":["$$r",{"star":5}]`)
	assert.Contains(t, js, `"$concatArrays":[{"$ifNull":["$ratings",[]]},[{"star":5,"postedBy":{"$oid":"`+user.Hex()+`"}}]]`)
	assert.Contains(t, js, `"updatedAt":"$$NOW"`)
}

func TestAttributeFilter(t *testing.T) {
	cat := bson.NewObjectID()

	f, err := attributeFilter(repository.AttrCategory, cat.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "category", Value: cat}}, f)

	f, err = attributeFilter(repository.AttrShipping, false)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "shipping", Value: false}}, f)

	f, err = attributeFilter(repository.AttrBrand, "Apple")
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "brand", Value: "Apple"}}, f)

	_, err = attributeFilter(repository.AttrCategory, "phones")
	assert.Error(t, err)
	_, err = attributeFilter(repository.AttrShipping, "yes")
	assert.Error(t, err)
	_, err = attributeFilter("sku", "x")
	assert.Error(t, err)
}

func TestProductDoc_RoundTrip(t *testing.T) {
	cat, sub, user, rater := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	doc, err := newProductDoc(&domain.Product{
		Title:     "Pixel",
		Slug:      "pixel",
		Price:     499,
		Category:  &domain.Ref{ID: cat.Hex()},
		Subs:      []domain.Ref{{ID: sub.Hex()}},
		PostedBy:  &domain.Ref{ID: user.Hex()},
		Images:    []domain.Image{{URL: "https://img/1.png"}},
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Equal(t, cat, doc.Category)
	assert.Equal(t, []bson.ObjectID{sub}, doc.Subs)
	assert.Equal(t, []ratingDoc{}, doc.Ratings)

	doc.ID = bson.NewObjectID()
	doc.Ratings = []ratingDoc{{Star: 4, PostedBy: rater}}
	doc.CategoryRef = []refDoc{{ID: cat, Name: "Phones", Slug: "phones"}}
	doc.PostedByRef = []refDoc{{ID: user, Name: "Ada"}}

	p := doc.toDomain()
	assert.Equal(t, doc.ID.Hex(), p.ID)
	assert.Equal(t, &domain.Ref{ID: cat.Hex(), Name: "Phones", Slug: "phones"}, p.Category)
	assert.Equal(t, []domain.Ref{{ID: sub.Hex()}}, p.Subs, "unresolved subs keep their id")
	assert.Equal(t, "Ada", p.PostedBy.Name)
	assert.Equal(t, []domain.Rating{{Star: 4, PostedBy: rater.Hex()}}, p.Ratings)
	assert.Equal(t, created, p.CreatedAt)
}

func TestNewProductDoc_RejectsBadRefs(t *testing.T) {
	_, err := newProductDoc(&domain.Product{Category: &domain.Ref{ID: "phones"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = newProductDoc(&domain.Product{Subs: []domain.Ref{{ID: "x"}}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	doc, err := newProductDoc(&domain.Product{})
	require.NoError(t, err)
	assert.True(t, doc.Category.IsZero())
}

func TestOrderByIDs(t *testing.T) {
	products := []domain.Product{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := orderByIDs(products, []string{"c", "x", "a"})
	assert.Equal(t, []domain.Product{{ID: "c"}, {ID: "a"}}, got)
}

func TestUserDoc_DefaultsRole(t *testing.T) {
	d := userDoc{ID: bson.NewObjectID(), Email: "a@b.c"}
	assert.Equal(t, domain.RoleSubscriber, d.toDomain().Role)
}
