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
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/service"
)

// RouterConfig carries the router's non-service dependencies.
type RouterConfig struct {
	Tokens           middleware.TokenValidator
	CORS             middleware.CORSConfig
	Health           *health.Handler
	MetricsAllowlist []string
	// LoginLimit throttles login attempts per client IP.
	LoginLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all content service routes registered.
func NewRouter(
	segments *service.SegmentService,
	auth *service.AuthService,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("content"))
	r.Use(middleware.PrometheusMetrics("content"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.With(middleware.IPAllowlist(cfg.MetricsAllowlist, logger)).Handle("/metrics", promhttp.Handler())

	segmentHandler := NewSegmentHandler(segments, logger)
	adminHandler := NewAdminHandler(auth, segments, logger)

	requireAdmin := chi.Chain(
		middleware.Auth(cfg.Tokens),
		middleware.RequireRole(middleware.RoleAdmin),
		middleware.RequestLogger(logger),
	)

	r.Route("/api/v1/segments", func(r chi.Router) {
		r.Get("/", segmentHandler.ListKeys)
		r.Get("/{key}", segmentHandler.GetSegment)
		r.With(requireAdmin...).Post("/{key}", segmentHandler.PutSegment)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.LoginLimit, logger)).Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin...)
			r.Post("/credentials", adminHandler.RotateCredentials)
			r.Post("/seed", adminHandler.Seed)
		})
	})

	return r
}
