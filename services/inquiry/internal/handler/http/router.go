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
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/service"
)

// RouterConfig carries the router's non-service dependencies.
type RouterConfig struct {
	Tokens           middleware.TokenValidator
	CORS             middleware.CORSConfig
	Health           *health.Handler
	MetricsAllowlist []string
	SubmitLimit      middleware.RateLimitConfig
}

// NewRouter creates a chi router with all inquiry service routes registered.
func NewRouter(inquiries *service.InquiryService, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("inquiry"))
	r.Use(middleware.PrometheusMetrics("inquiry"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.With(middleware.IPAllowlist(cfg.MetricsAllowlist, logger)).Handle("/metrics", promhttp.Handler())

	h := NewInquiryHandler(inquiries, logger)

	requireAdmin := chi.Chain(
		middleware.Auth(cfg.Tokens),
		middleware.RequireRole(middleware.RoleAdmin),
		middleware.RequestLogger(logger),
	)

	r.Get("/api/v1/track/{id}", h.Track)

	r.Route("/api/v1/inquiries", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.SubmitLimit, logger)).Post("/", h.Submit)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin...)
			r.Get("/", h.List)
			r.Get("/stats", h.Stats)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}/status", h.UpdateStatus)
		})
	})

	return r
}
