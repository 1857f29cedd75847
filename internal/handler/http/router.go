package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/service"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/health"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/pagination"
)

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	ServiceName  string
	SearchPolicy pagination.Policy
	CORS         middleware.CORSConfig
	PprofCIDRs   []string
	CacheMaxAge  int

	// Per-client limit on the filter endpoint. Zero disables it.
	SearchRPS   float64
	SearchBurst int
}

// Dependencies are the collaborators the routes are served by.
type Dependencies struct {
	Search     *service.SearchService
	Products   *service.ProductService
	Categories *service.CategoryService
	Tokens     middleware.TokenValidator
	Users      repository.UserDirectory
	Health     *health.Handler
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(deps Dependencies, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check and operational endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	searchHandler := NewSearchHandler(deps.Search, cfg.SearchPolicy, logger)
	productHandler := NewProductHandler(deps.Products, logger)
	categoryHandler := NewCategoryHandler(deps.Categories, logger)

	authenticated := func(r chi.Router) {
		r.Use(middleware.Auth(deps.Tokens))
		r.Use(ResolveUser(deps.Users))
		r.Use(middleware.RequestLogger(logger))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.CacheControl(cfg.CacheMaxAge))

		// Public catalog reads
		if cfg.SearchRPS > 0 {
			r.With(middleware.RateLimit(cfg.SearchRPS, cfg.SearchBurst, logger)).
				Post("/search/filters", searchHandler.Filter)
		} else {
			r.Post("/search/filters", searchHandler.Filter)
		}
		r.Get("/product/{idOrSlug}", productHandler.GetProduct)
		r.Get("/product/related/{productId}", productHandler.ListRelated)
		r.Get("/products/total", productHandler.CountProducts)
		r.Get("/products/{count}", productHandler.ListNewest)
		r.Post("/products", productHandler.ListProducts)
		r.Get("/categories", categoryHandler.ListCategories)
		r.Get("/category/{slug}", categoryHandler.GetCategory)

		// Signed-in users
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Put("/product/star/{productId}", productHandler.RateProduct)
		})

		// Admin
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/product", productHandler.CreateProduct)
			r.Put("/product/{slug}", productHandler.UpdateProduct)
			r.Delete("/product/{slug}", productHandler.DeleteProduct)

			r.Post("/category", categoryHandler.CreateCategory)
			r.Put("/category/{slug}", categoryHandler.UpdateCategory)
			r.Delete("/category/{slug}", categoryHandler.DeleteCategory)
		})
	})

	return r
}
