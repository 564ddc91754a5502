package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	pkgconfig "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8102"`

	// InstanceID names this replica's segment subscription. Defaults to
	// the hostname, or a random id when that is unavailable.
	InstanceID string `env:"INSTANCE_ID"`

	ContentBaseURL string `env:"CONTENT_BASE_URL" envDefault:"http://localhost:8101"`
	InquiryBaseURL string `env:"INQUIRY_BASE_URL" envDefault:"http://localhost:8103"`

	// Bounds concurrent segment fetches during a load.
	LoadConcurrency int `env:"CONTENT_LOAD_CONCURRENCY" envDefault:"4"`

	Redis   database.RedisConfig
	Tracing tracing.Config

	// QuoteTTL is how long an untouched quote draft survives.
	QuoteTTL time.Duration `env:"QUOTE_TTL" envDefault:"168h"`

	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	IdempotencyTTL time.Duration `env:"EVENT_IDEMPOTENCY_TTL" envDefault:"24h"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// Must match the content service so admin tokens validate here too.
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envSeparator:","`
	// Peers in these CIDRs may set X-Forwarded-For for rate limiting.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`
	CacheMaxAge       int      `env:"CATALOGUE_CACHE_MAX_AGE" envDefault:"60"`

	AdvisorRateLimitRPS   float64 `env:"ADVISOR_RATE_LIMIT_RPS" envDefault:"0.5"`
	AdvisorRateLimitBurst int     `env:"ADVISOR_RATE_LIMIT_BURST" envDefault:"5"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = defaultInstanceID()
	}
	cfg.Tracing.ServiceName = "storefront"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

func defaultInstanceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	for name, raw := range map[string]string{"CONTENT_BASE_URL": c.ContentBaseURL, "INQUIRY_BASE_URL": c.InquiryBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.QuoteTTL <= 0 {
		return fmt.Errorf("QUOTE_TTL must be positive, got %s", c.QuoteTTL)
	}
	if c.CacheMaxAge < 0 {
		return fmt.Errorf("CATALOGUE_CACHE_MAX_AGE must not be negative, got %d", c.CacheMaxAge)
	}

	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}
