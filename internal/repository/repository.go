package repository

import (
	"context"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
)

// ProductResource is the resource name used in NotFound and DuplicateReview
// errors, giving "Product not found" and "Product already reviewed".
const ProductResource = "Product"

// ProductFilter selects products. An empty Keyword matches everything;
// otherwise it is a case-insensitive substring of the name, matched literally.
type ProductFilter struct {
	Keyword string
}

// SortOrder orders Find results.
type SortOrder int

const (
	// SortNatural returns products in insertion order.
	SortNatural SortOrder = iota
	// SortRatingDesc returns the highest rated first; ties keep insertion order.
	SortRatingDesc
)

// FindOptions controls a Find call. Limit <= 0 means no limit.
type FindOptions struct {
	Filter ProductFilter
	Sort   SortOrder
	Offset int
	Limit  int
}

// CatalogStore persists products and their embedded reviews.
//
// GetByID, Update, Delete and AppendReview return an error matching
// apperrors.ErrNotFound when no product has the given ID, including IDs that
// are malformed for the backend.
type CatalogStore interface {
	// Count returns the number of products matching filter.
	Count(ctx context.Context, filter ProductFilter) (int, error)

	// Find returns matching products with their reviews.
	Find(ctx context.Context, opts FindOptions) ([]domain.Product, error)

	// GetByID returns one product with its reviews.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Create stores p and sets its ID.
	Create(ctx context.Context, p *domain.Product) error

	// Update writes the editable fields and UpdatedAt of p.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes the product and its reviews.
	Delete(ctx context.Context, id string) error

	// AppendReview atomically appends review if the product has no review by
	// review.UserID, recomputing NumReviews and Rating in the same write. An
	// empty review.ID is assigned by the store.
	// It fails with apperrors.ErrDuplicateReview when the user already
	// reviewed the product, leaving it unchanged.
	AppendReview(ctx context.Context, productID string, review *domain.Review) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
