package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/service"
	"github.com/MuthuprabhaT/BlendCart/pkg/httputil"
	"github.com/MuthuprabhaT/BlendCart/pkg/middleware"
	"github.com/MuthuprabhaT/BlendCart/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewAggregator
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewAggregator, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// Rating accepts a JSON number or a numeric string and truncates it to an
// integer, so "4" and 4.0 are both 4.
type Rating int

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	if raw == "" || raw == "null" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("rating must be a number")
	}
	*r = Rating(int(f))
	return nil
}

// AddReviewRequest is the JSON request body for reviewing a product.
type AddReviewRequest struct {
	Rating  Rating `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

// AddReview handles POST /api/products/{id}/reviews. The reviewer is the
// authenticated caller.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	in := domain.AddReviewInput{
		ProductID: chi.URLParam(r, "id"),
		Rating:    int(req.Rating),
		Comment:   req.Comment,
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		in.UserID = claims.UserID
		in.UserName = claims.Name
	}

	if err := h.service.AddReview(r.Context(), in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "Review added")
}
