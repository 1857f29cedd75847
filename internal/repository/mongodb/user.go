package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/database"
)

// UserDirectory reads users written by the identity service.
type UserDirectory struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ repository.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(db *mongo.Database, timeout time.Duration) *UserDirectory {
	return &UserDirectory{coll: db.Collection(collUsers), timeout: timeout}
}

func (d *UserDirectory) GetByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	ctx, cancel := opContext(ctx, d.timeout)
	defer cancel()
	ctx, end := database.TraceQuery(ctx, collUsers, "find_one", `{"email":"?"}`)
	defer func() { end(err) }()

	var doc userDoc
	if err := d.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		return nil, mapFindErr(err, "user", email)
	}
	u := doc.toDomain()
	return &u, nil
}
