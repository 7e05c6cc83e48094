package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("90d")
	require.NoError(t, err)
	assert.Equal(t, 90*24*time.Hour, d)

	d, err = ParseDuration("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "my-ultra-secure-and-ultra-long-secret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "natours")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, 12, cfg.JWT.BcryptCost)
	assert.Equal(t, 90, cfg.JWT.CookieExpiresDays)
	assert.Equal(t, 1000, cfg.Pagination.MaxLimit)
	assert.Equal(t, 43200, cfg.CORS.MaxAge)
	assert.Contains(t, cfg.Database.DSN(), "host=db ")
	assert.Contains(t, cfg.Database.DSN(), "dbname=natours ")
}
