package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MuthuprabhaT/BlendCart/internal/auth"
	"github.com/MuthuprabhaT/BlendCart/internal/service"
	"github.com/MuthuprabhaT/BlendCart/pkg/health"
	"github.com/MuthuprabhaT/BlendCart/pkg/middleware"
)

// Options tunes router behaviour that differs between deployments.
type Options struct {
	ServiceName string
	UploadRPS   float64
	UploadBurst int
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	productService *service.ProductService,
	reviewAggregator *service.ReviewAggregator,
	imagePipeline *service.ImagePipeline,
	tokens middleware.TokenValidator,
	healthHandler *health.Handler,
	opts Options,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.PrometheusMetrics(opts.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	authenticated := func(r chi.Router) {
		r.Use(middleware.Auth(tokens))
		// Re-derive the request logger so it carries the caller's user_id.
		r.Use(middleware.RequestLogger(logger))
	}

	productHandler := NewProductHandler(productService, logger)
	reviewHandler := NewReviewHandler(reviewAggregator, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(RequireJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/top", productHandler.TopRated)
		r.Get("/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Post("/{id}/reviews", reviewHandler.AddReview)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))

				r.Post("/", productHandler.CreateProduct)
				r.Put("/{id}", productHandler.UpdateProduct)
				r.Delete("/{id}", productHandler.DeleteProduct)
			})
		})
	})

	uploadHandler := NewUploadHandler(imagePipeline, logger)

	r.Route("/api/upload", func(r chi.Router) {
		authenticated(r)
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Use(middleware.RateLimit(opts.UploadRPS, opts.UploadBurst, logger))

		r.Post("/", uploadHandler.UploadImage)
	})

	return r
}
