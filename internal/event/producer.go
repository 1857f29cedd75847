package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	pkgkafka "github.com/Antony-QP/React-Ecommerce-Backend/pkg/kafka"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
)

// Kafka topics for catalog events.
const (
	TopicProductCreated = "ecommerce.product.created"
	TopicProductUpdated = "ecommerce.product.updated"
	TopicProductDeleted = "ecommerce.product.deleted"
	TopicProductRated   = "ecommerce.product.rated"
)

const (
	AggregateTypeProduct = "product"
	SourceCatalogService = "catalog-service"

	// MetadataActor carries the email of the user whose request raised the
	// event.
	MetadataActor = "actor"
)

// ProductData is the payload of created and updated events.
type ProductData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	Price      float64 `json:"price"`
	CategoryID string  `json:"category_id,omitempty"`
	Brand      string  `json:"brand"`
	Color      string  `json:"color"`
	Shipping   bool    `json:"shipping"`
	Quantity   int     `json:"quantity"`
}

// ProductDeletedData is the payload of a product.deleted event.
type ProductDeletedData struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// ProductRatedData is the payload of a product.rated event.
type ProductRatedData struct {
	ProductID    string `json:"product_id"`
	UserID       string `json:"user_id"`
	Star         int    `json:"star"`
	FloorAverage int    `json:"floor_average"`
	RatingCount  int    `json:"rating_count"`
}

// Producer publishes catalog events. A Producer without a Kafka producer
// drops events, which is how the service runs without a broker.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Price:      p.Price,
		CategoryID: p.CategoryID(),
		Brand:      p.Brand,
		Color:      p.Color,
		Shipping:   p.Shipping,
		Quantity:   p.Quantity,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	if p.kafka == nil {
		p.logger.DebugContext(ctx, "event dropped, no broker configured", slog.String("topic", topic))
		return nil
	}
	evt, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeProduct, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if actor := middleware.EmailFromContext(ctx); actor != "" {
		evt.WithMetadata(MetadataActor, actor)
	}
	return p.kafka.Publish(ctx, topic, evt)
}

func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, productData(product))
}

func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, productData(product))
}

func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductDeleted, product.ID, ProductDeletedData{ID: product.ID, Slug: product.Slug})
}

// PublishProductRated reports userID's new star together with the product's
// resulting floor average.
func (p *Producer) PublishProductRated(ctx context.Context, product *domain.Product, userID string, star int) error {
	return p.publish(ctx, TopicProductRated, product.ID, ProductRatedData{
		ProductID:    product.ID,
		UserID:       userID,
		Star:         star,
		FloorAverage: domain.FloorAverage(product.Ratings),
		RatingCount:  len(product.Ratings),
	})
}
