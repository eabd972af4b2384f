// Package memory is an in-process CatalogStore for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

// Store keeps products in a map guarded by a single mutex. Every read returns
// a copy so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
}

var _ repository.CatalogStore = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{products: make(map[string]*domain.Product)}
}

func clone(p *domain.Product) domain.Product {
	out := *p
	out.Reviews = append([]domain.Review{}, p.Reviews...)
	return out
}

func matches(p *domain.Product, f repository.ProductFilter) bool {
	if f.Keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Keyword))
}

// Count implements repository.CatalogStore.
func (s *Store) Count(_ context.Context, filter repository.ProductFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range s.order {
		if matches(s.products[id], filter) {
			n++
		}
	}
	return n, nil
}

// Find implements repository.CatalogStore.
func (s *Store) Find(_ context.Context, opts repository.FindOptions) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, id := range s.order {
		if p := s.products[id]; matches(p, opts.Filter) {
			out = append(out, clone(p))
		}
	}

	if opts.Sort == repository.SortRatingDesc {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []domain.Product{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// GetByID implements repository.CatalogStore.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound(repository.ProductResource)
	}
	out := clone(p)
	return &out, nil
}

// Create implements repository.CatalogStore.
func (s *Store) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	stored := clone(p)
	s.products[p.ID] = &stored
	s.order = append(s.order, p.ID)
	return nil
}

// Update implements repository.CatalogStore.
func (s *Store) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.products[p.ID]
	if !ok {
		return apperrors.NotFound(repository.ProductResource)
	}
	stored.Apply(domain.ProductFields{
		Name:         p.Name,
		Price:        p.Price,
		Description:  p.Description,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		CountInStock: p.CountInStock,
	}, p.UpdatedAt)
	return nil
}

// Delete implements repository.CatalogStore.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return apperrors.NotFound(repository.ProductResource)
	}
	delete(s.products, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// AppendReview implements repository.CatalogStore.
func (s *Store) AppendReview(_ context.Context, productID string, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return apperrors.NotFound(repository.ProductResource)
	}
	if p.HasReviewBy(review.UserID) {
		return apperrors.DuplicateReview(repository.ProductResource)
	}

	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	p.Reviews = append(p.Reviews, *review)
	p.NumReviews = len(p.Reviews)
	p.Rating = domain.AverageRating(p.Reviews)
	return nil
}

// Ping implements repository.CatalogStore.
func (s *Store) Ping(context.Context) error { return nil }
