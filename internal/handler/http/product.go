package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/service"
	"github.com/MuthuprabhaT/BlendCart/pkg/httputil"
	"github.com/MuthuprabhaT/BlendCart/pkg/middleware"
	"github.com/MuthuprabhaT/BlendCart/pkg/pagination"
	"github.com/MuthuprabhaT/BlendCart/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateProductRequest is the JSON request body for replacing a product's
// editable fields. Omitted fields are cleared.
type UpdateProductRequest struct {
	Name         string          `json:"name" validate:"max=500"`
	Price        decimal.Decimal `json:"price" validate:"gte=0,lte=9999999999.99"`
	Description  string          `json:"description"`
	Image        string          `json:"image" validate:"max=2048"`
	Brand        string          `json:"brand" validate:"max=200"`
	Category     string          `json:"category" validate:"max=200"`
	CountInStock int             `json:"countInStock" validate:"gte=0"`
}

func (req UpdateProductRequest) fields() domain.ProductFields {
	return domain.ProductFields{
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		Image:        req.Image,
		Brand:        req.Brand,
		Category:     req.Category,
		CountInStock: req.CountInStock,
	}
}

// --- Handlers ---

// ListProducts handles GET /api/products?keyword=&pageNumber=.
// A missing or invalid pageNumber means the first page.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.ParsePage(q.Get("pageNumber"))

	result, err := h.service.ListProducts(r.Context(), q.Get("keyword"), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// TopRated handles GET /api/products/top?limit=.
func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultTopRatedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a valid integer between 1 and 100"},
			})
			return
		}
		limit = n
	}

	products, err := h.service.TopRated(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/products. It creates a draft owned by the
// caller; the request body is ignored.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.CreateDraft(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product removed")
}
