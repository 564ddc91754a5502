package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/health"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/assistant"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

// Services groups the storefront services behind the router.
type Services struct {
	Catalogue *service.CatalogueService
	Products  *service.ProductService
	Quotes    *service.QuoteService
	Assistant *assistant.Assistant
}

// RouterConfig carries the router's non-service dependencies.
type RouterConfig struct {
	Tokens           middleware.TokenValidator
	CORS             middleware.CORSConfig
	Health           *health.Handler
	MetricsAllowlist []string
	// CacheMaxAge is the public max-age in seconds for catalogue reads.
	CacheMaxAge int
	// AdvisorLimit throttles public advisor calls per client IP.
	AdvisorLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.With(middleware.IPAllowlist(cfg.MetricsAllowlist, logger)).Handle("/metrics", promhttp.Handler())

	catalogueHandler := NewCatalogueHandler(svc.Catalogue, logger)
	quoteHandler := NewQuoteHandler(svc.Quotes, logger)
	adminHandler := NewAdminHandler(svc.Products, logger)
	assistantHandler := NewAssistantHandler(svc.Assistant, svc.Catalogue, logger)

	requireAdmin := chi.Chain(
		middleware.Auth(cfg.Tokens),
		middleware.RequireRole(middleware.RoleAdmin),
		middleware.RequestLogger(logger),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))
			r.Get("/catalogue/index", catalogueHandler.Index)
			r.Get("/products", catalogueHandler.ListProducts)
			r.Get("/products/{id}", catalogueHandler.GetProduct)
			r.Get("/banners/resolve", catalogueHandler.ResolveBanner)
			r.Get("/content/{key}", catalogueHandler.GetSegment)
		})

		r.Route("/quote", func(r chi.Router) {
			r.Use(Session)
			r.Use(middleware.RequestLogger(logger))
			r.Get("/", quoteHandler.GetDraft)
			r.Delete("/", quoteHandler.ClearDraft)
			r.Post("/configure", quoteHandler.Configure)
			r.Post("/items", quoteHandler.AddItem)
			r.Delete("/items/{index}", quoteHandler.RemoveItem)
			r.Post("/submit", quoteHandler.Submit)
		})

		r.With(middleware.RateLimit(cfg.AdvisorLimit, logger)).Post("/assistant/advisor", assistantHandler.Advise)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin...)

			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Post("/products/reorder", adminHandler.ReorderProducts)
			r.Put("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)

			r.Put("/content/{key}", adminHandler.ReplaceContent)
			r.Post("/content/reload", adminHandler.ReloadContent)
			r.Get("/content/status", adminHandler.ContentStatus)

			r.Post("/assistant/description", assistantHandler.Describe)
			r.Post("/assistant/review", assistantHandler.Review)
		})
	})

	return r
}
