package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8101, cfg.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.SegmentCacheTTL)
	assert.Equal(t, "admin", cfg.DefaultAdminUsername)
	assert.Equal(t, "content", cfg.Tracing.ServiceName)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CONTENT_HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")

	t.Setenv("JWT_SECRET", "too-short")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")

	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	_, err = Load()
	assert.NoError(t, err)
}
