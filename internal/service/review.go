package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/event"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
)

// ReviewAggregator accepts reviews and keeps each product's rating and
// review count consistent with its review list.
type ReviewAggregator struct {
	store  repository.CatalogStore
	cache  TopRatedCache
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewAggregator creates a review aggregator. cache and events may be nil.
func NewReviewAggregator(
	store repository.CatalogStore,
	cache TopRatedCache,
	events EventPublisher,
	logger *slog.Logger,
) *ReviewAggregator {
	if events == nil {
		events = event.Noop{}
	}
	return &ReviewAggregator{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AddReview appends the caller's review to a product. The uniqueness check,
// the append and the rating recomputation happen in one store write, so a
// second review by the same user fails with apperrors.ErrDuplicateReview and
// leaves the product unchanged.
func (a *ReviewAggregator) AddReview(ctx context.Context, in domain.AddReviewInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	review := domain.NewReview(in, a.now())
	if err := a.store.AppendReview(ctx, in.ProductID, &review); err != nil {
		return fmt.Errorf("add review: %w", err)
	}

	a.logger.InfoContext(ctx, "review added",
		slog.String("product_id", in.ProductID),
		slog.String("user_id", in.UserID),
		slog.Int("rating", in.Rating),
	)

	invalidateTopRated(ctx, a.cache, a.logger)
	if err := a.events.PublishProductReviewed(ctx, in.ProductID, review); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish product reviewed event",
			slog.String("product_id", in.ProductID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
