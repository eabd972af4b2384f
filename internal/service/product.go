package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/event"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
	"github.com/MuthuprabhaT/BlendCart/pkg/pagination"
)

// EventPublisher publishes catalog domain events. Failures are logged by the
// services and never fail the operation that triggered them.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, p *domain.Product) error
	PublishProductUpdated(ctx context.Context, p *domain.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
	PublishProductReviewed(ctx context.Context, productID string, review domain.Review) error
}

// TopRatedCache caches the top-rated listing per limit. Get reports the
// cache generation it read; Set stores under that generation, so a listing
// computed before an Invalidate is never served after it.
type TopRatedCache interface {
	Get(ctx context.Context, limit int) (products []domain.Product, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, limit int, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// ProductService implements listing, search and CRUD over the catalog.
type ProductService struct {
	store    repository.CatalogStore
	cache    TopRatedCache
	events   EventPublisher
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

// NewProductService creates a new product service. cache may be nil, in which
// case top-rated listings always hit the store. events may be nil to disable
// publishing.
func NewProductService(
	store repository.CatalogStore,
	cache TopRatedCache,
	events EventPublisher,
	pageSize int,
	logger *slog.Logger,
) *ProductService {
	if events == nil {
		events = event.Noop{}
	}
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &ProductService{
		store:    store,
		cache:    cache,
		events:   events,
		pageSize: pageSize,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListProducts returns one page of products whose name contains keyword.
// Pages are 1-indexed; a page below 1 is treated as page 1.
func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*domain.ProductPage, error) {
	params := pagination.New(page, s.pageSize)
	filter := repository.ProductFilter{Keyword: strings.TrimSpace(keyword)}

	count, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products, err := s.store.Find(ctx, repository.FindOptions{
		Filter: filter,
		Offset: params.Offset(),
		Limit:  params.Limit(),
	})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	return &domain.ProductPage{
		Products: products,
		Page:     params.Page,
		Pages:    pagination.TotalPages(count, params.PageSize),
	}, nil
}

// GetProduct returns a product with its reviews.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// CreateDraft stores a placeholder product owned by ownerID. ownerID must be
// non-blank; otherwise apperrors.ErrInvalidInput is returned and nothing is
// stored.
func (s *ProductService) CreateDraft(ctx context.Context, ownerID string) (*domain.Product, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.InvalidInput("owner is required")
	}

	p := domain.NewDraftProduct(ownerID, s.now())
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "draft product created",
		slog.String("product_id", p.ID),
		slog.String("owner_id", ownerID),
	)

	s.afterMutation(ctx)
	if err := s.events.PublishProductCreated(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product created event",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	return p, nil
}

// UpdateProduct replaces the editable fields of a product with fields. Fields
// absent from the request arrive zeroed and clear the stored value.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (*domain.Product, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	p.Apply(fields, s.now())
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", p.ID))

	s.afterMutation(ctx)
	if err := s.events.PublishProductUpdated(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product updated event",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	return p, nil
}

// DeleteProduct removes a product together with its reviews.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	s.afterMutation(ctx)
	if err := s.events.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// TopRated returns at most limit products ordered by rating, highest first.
// A limit below 1 means domain.DefaultTopRatedLimit.
func (s *ProductService) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = domain.DefaultTopRatedLimit
	}

	var (
		gen       int64
		fillCache bool
	)
	if s.cache != nil {
		products, g, ok, err := s.cache.Get(ctx, limit)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "top rated cache read failed",
				slog.String("error", err.Error()),
			)
		case ok:
			return products, nil
		default:
			gen, fillCache = g, true
		}
	}

	products, err := s.store.Find(ctx, repository.FindOptions{
		Sort:  repository.SortRatingDesc,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find top rated products: %w", err)
	}

	if fillCache {
		if err := s.cache.Set(ctx, gen, limit, products); err != nil {
			s.logger.WarnContext(ctx, "top rated cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return products, nil
}

// afterMutation drops cached listings that may now be stale.
func (s *ProductService) afterMutation(ctx context.Context) {
	invalidateTopRated(ctx, s.cache, s.logger)
}

func invalidateTopRated(ctx context.Context, cache TopRatedCache, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "top rated cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
