package domain

import (
	"strings"
	"time"

	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

// Rating bounds for a single review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's review of a product. Name is a snapshot of the
// reviewer's display name at submission time.
type Review struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddReviewInput holds a review submission.
type AddReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// Validate checks the rating range and that the caller is identified.
func (in AddReviewInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return apperrors.InvalidInput("reviewer identity is required")
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

// NewReview builds the review record appended for in. The store assigns its ID.
func NewReview(in AddReviewInput, now time.Time) Review {
	return Review{
		Name:      in.UserName,
		Rating:    in.Rating,
		Comment:   in.Comment,
		UserID:    in.UserID,
		CreatedAt: now,
	}
}

// HasReviewBy reports whether userID already reviewed p.
func (p *Product) HasReviewBy(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AverageRating is the arithmetic mean of the review ratings, or 0 when there
// are none.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
