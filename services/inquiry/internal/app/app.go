package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/auth"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/health"
	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/event"
	handler "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/handler/http"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/repository/postgres"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/service"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/migrations"
)

// App wires together all dependencies and runs the inquiry service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
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

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)
	database.RegisterPoolMetrics(pool, "inquiry")
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	tokens := auth.NewJWTManager(cfg.JWTSecret, 0)
	inquiryService := service.NewInquiryService(
		postgres.NewInquiryRepository(pool),
		event.NewProducer(producer, logger),
		logger,
	)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	router := handler.NewRouter(inquiryService, handler.RouterConfig{
		Tokens: tokens.Validate,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		Health:           healthHandler,
		MetricsAllowlist: cfg.MetricsAllowedCIDRs,
		SubmitLimit: middleware.RateLimitConfig{
			RPS:            cfg.SubmitRateLimitRPS,
			Burst:          cfg.SubmitRateLimitBurst,
			TrustedProxies: cfg.TrustedProxyCIDRs,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
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
	// Flush pending events before the pool goes away.
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka producer close: %w", err))
	}
	a.pool.Close()
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
