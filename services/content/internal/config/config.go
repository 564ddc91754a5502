package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the content service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"CONTENT_HTTP_PORT" envDefault:"8101"`

	Postgres database.PostgresConfig
	Redis    database.RedisConfig
	Tracing  tracing.Config

	// SegmentCacheTTL bounds how long a segment is served from Redis.
	SegmentCacheTTL    time.Duration `env:"SEGMENT_CACHE_TTL" envDefault:"5m"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"8h"`

	// Used until credentials are rotated for the first time.
	DefaultAdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	DefaultAdminPassword string `env:"ADMIN_PASSWORD" envDefault:"password123"`

	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envSeparator:","`
	// Peers in these CIDRs may set X-Forwarded-For for rate limiting.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	LoginRateLimitRPS   float64 `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"0.2"`
	LoginRateLimitBurst int     `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"5"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load content config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "content"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
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
