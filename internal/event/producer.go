// Package event publishes catalog domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	pkgkafka "github.com/MuthuprabhaT/BlendCart/pkg/kafka"
	"github.com/MuthuprabhaT/BlendCart/pkg/logger"
)

// Event types published on TopicProduct.
const (
	TypeProductCreated  = "product.created"
	TypeProductUpdated  = "product.updated"
	TypeProductDeleted  = "product.deleted"
	TypeProductReviewed = "product.reviewed"
)

// AggregateTypeProduct is the aggregate every catalog event refers to.
const AggregateTypeProduct = "product"

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// TopicProduct carries every product lifecycle event, keyed by product ID.
var TopicProduct = pkgkafka.Topic("catalog", "product")

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ProductID    string `json:"product_id"`
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Category     string `json:"category"`
	Price        string `json:"price"`
	CountInStock int    `json:"count_in_stock"`
}

// ProductDeletedData is the payload for product.deleted.
type ProductDeletedData struct {
	ProductID string `json:"product_id"`
}

// ProductReviewedData is the payload for product.reviewed.
type ProductReviewedData struct {
	ProductID string `json:"product_id"`
	ReviewID  string `json:"review_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

// Publisher is the subset of pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ProductID:    p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Price:        p.Price.String(),
		CountInStock: p.CountInStock,
	}
}

func (p *Producer) publish(ctx context.Context, eventType, productID string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, productID, AggregateTypeProduct, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicProduct, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.String("product_id", productID),
	)
	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TypeProductCreated, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TypeProductUpdated, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TypeProductDeleted, productID, ProductDeletedData{ProductID: productID})
}

// PublishProductReviewed publishes a product.reviewed event.
func (p *Producer) PublishProductReviewed(ctx context.Context, productID string, review domain.Review) error {
	return p.publish(ctx, TypeProductReviewed, productID, ProductReviewedData{
		ProductID: productID,
		ReviewID:  review.ID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	})
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishProductCreated(context.Context, *domain.Product) error { return nil }
func (Noop) PublishProductUpdated(context.Context, *domain.Product) error { return nil }
func (Noop) PublishProductDeleted(context.Context, string) error { return nil }
func (Noop) PublishProductReviewed(context.Context, string, domain.Review) error { return nil }
