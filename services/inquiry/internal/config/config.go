package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/config"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the inquiry service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"INQUIRY_HTTP_PORT" envDefault:"8103"`

	Postgres database.PostgresConfig
	Tracing  tracing.Config

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tokens are issued by the content service; only the secret is shared.
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envSeparator:","`
	// Peers in these CIDRs may set X-Forwarded-For for rate limiting.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	SubmitRateLimitRPS   float64 `env:"SUBMIT_RATE_LIMIT_RPS" envDefault:"0.5"`
	SubmitRateLimitBurst int     `env:"SUBMIT_RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load inquiry config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "inquiry"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must list at least one broker")
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
