package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/auth"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/health"
	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/event"
	handler "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/handler/http"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/repository"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/repository/postgres"
	rediscache "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/repository/redis"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/service"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/migrations"
)

// App wires together all dependencies and runs the content service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)
	database.RegisterPoolMetrics(pool, "content")
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis is only a cache here; start without it rather than fail.
	var cache repository.SegmentCache
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, segment cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		cache = rediscache.NewSegmentCache(redisClient)
	}

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	segmentService := service.NewSegmentService(
		postgres.NewSegmentRepository(pool),
		cache,
		event.NewProducer(producer, logger),
		cfg.SegmentCacheTTL,
		logger,
	)
	authService := service.NewAuthService(
		postgres.NewCredentialRepository(pool),
		tokens,
		cfg.DefaultAdminUsername,
		cfg.DefaultAdminPassword,
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	router := handler.NewRouter(segmentService, authService, handler.RouterConfig{
		Tokens: tokens.Validate,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		Health:           healthHandler,
		MetricsAllowlist: cfg.MetricsAllowedCIDRs,
		LoginLimit: middleware.RateLimitConfig{
			RPS:            cfg.LoginRateLimitRPS,
			Burst:          cfg.LoginRateLimitBurst,
			TrustedProxies: cfg.TrustedProxyCIDRs,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka producer close: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	a.pool.Close()
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
