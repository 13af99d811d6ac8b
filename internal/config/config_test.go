package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATABASE_URL", "PORT", "JWT_SECRET", "TOKEN_TTL", "SEED", "CORS_ORIGINS", "UPLOAD_DIR", "COUPON_EXPIRY_SCHEDULE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "snackshop.sqlite", cfg.Database.URL)
	assert.Equal(t, "5000", cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "@every 1h", cfg.Jobs.CouponExpirySchedule)
	assert.False(t, cfg.Seed)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("SEED", "true")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.True(t, cfg.Seed)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SEED", "maybe")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid SEED")

	t.Setenv("SEED", "")
	t.Setenv("TOKEN_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid TOKEN_TTL")
}
