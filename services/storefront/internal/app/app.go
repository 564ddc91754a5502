package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/auth"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/health"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httpclient"
	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/assistant"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/client"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/event"
	handler "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/handler/http"
	storeredis "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/repository/redis"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	consumer       *pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	gemini         *assistant.GeminiModel
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

	// Quote drafts live in Redis, so it is required.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis.Addr()))

	// Downstream clients.
	contentHTTP := httpclient.NewCircuitBreakerClient(httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("content"), logger)
	inquiryHTTP := httpclient.NewCircuitBreakerClient(httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("inquiry"), logger)

	store, err := contentstore.New(contentstore.NewHTTPRemote(cfg.ContentBaseURL, contentHTTP), logger,
		contentstore.WithLoadConcurrency(cfg.LoadConcurrency))
	if err != nil {
		_ = redisClient.Close()
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("create content store: %w", err)
	}
	// Load never fails; a down content service leaves the defaults in place.
	store.Load(ctx)

	// The assistant is optional; without a key its endpoints answer 503.
	var (
		gemini *assistant.GeminiModel
		model  assistant.Model
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err = assistant.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini unavailable, assistant disabled", slog.String("error", err.Error()))
		} else {
			model = gemini
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant disabled")
	}

	// Keep the snapshot current with writes made through other replicas.
	// The snapshot was just loaded in full, so the group starts at the tail.
	sub := event.ReplicaSubscription(cfg.InstanceID)
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     sub.GroupID,
		Topic:       event.TopicSegments,
		StartLatest: true,
	}, event.NewSegmentConsumer(store, logger).Handle, logger,
		pkgkafka.WithDeadLetter(dlq),
		pkgkafka.WithIdempotency(pkgkafka.NewRedisIdempotencyStore(redisClient, sub.IdempotencyPrefix, cfg.IdempotencyTTL)),
	)
	logger.Info("segment subscription", slog.String("group", sub.GroupID))

	// Build the dependency graph.
	tokens := auth.NewJWTManager(cfg.JWTSecret, time.Hour)
	services := handler.Services{
		Catalogue: service.NewCatalogueService(store, logger),
		Products:  service.NewProductService(store, logger),
		Quotes: service.NewQuoteService(
			storeredis.NewDraftRepository(redisClient, cfg.QuoteTTL),
			store,
			client.NewInquiryClient(cfg.InquiryBaseURL, inquiryHTTP),
			logger,
		),
		Assistant: assistant.New(model, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("content", func(context.Context) error {
		if report := store.LastLoad(); len(report.Failed) > 0 {
			return fmt.Errorf("%d segments failed to load", len(report.Failed))
		}
		return nil
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	router := handler.NewRouter(services, handler.RouterConfig{
		Tokens: tokens.Validate,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		Health:           healthHandler,
		MetricsAllowlist: cfg.MetricsAllowedCIDRs,
		CacheMaxAge:      cfg.CacheMaxAge,
		AdvisorLimit: middleware.RateLimitConfig{
			RPS:            cfg.AdvisorRateLimitRPS,
			Burst:          cfg.AdvisorRateLimitBurst,
			TrustedProxies: cfg.TrustedProxyCIDRs,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		redis:          redisClient,
		consumer:       consumer,
		dlq:            dlq,
		gemini:         gemini,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the segment consumer and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			a.logger.Error("segment consumer stopped", slog.String("error", err.Error()))
		}
	}()

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
	if err := a.consumer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka consumer close: %w", err))
	}
	if err := a.dlq.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka dlq close: %w", err))
	}
	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gemini close: %w", err))
		}
	}
	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis close: %w", err))
	}
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
