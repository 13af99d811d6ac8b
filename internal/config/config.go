package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the dev API server
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Auth Configuration
	Auth AuthConfig

	// Jobs Configuration
	Jobs JobsConfig

	// Logging Configuration
	Logging LoggingConfig

	// Seed fills an empty database with a demo admin and catalog
	Seed bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// HTTPConfig holds listener and CORS settings
type HTTPConfig struct {
	Port        string
	CORSOrigins []string
	UploadDir   string // category images are stored here and served under /uploads
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	CouponExpirySchedule string // cron spec, "off" disables the job
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	ttl := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		ttl = d
	}

	seed := false
	if v := os.Getenv("SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED %q: %w", v, err)
		}
		seed = b
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Tokens from a previous run stop validating after a restart
		secret = "snackshop-dev-secret"
	}

	return &Config{
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "snackshop.sqlite"),
		},
		HTTP: HTTPConfig{
			Port:        envOr("PORT", "5000"),
			CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),
			UploadDir:   envOr("UPLOAD_DIR", "uploads"),
		},
		Auth: AuthConfig{
			JWTSecret: secret,
			TokenTTL:  ttl,
		},
		Jobs: JobsConfig{
			CouponExpirySchedule: envOr("COUPON_EXPIRY_SCHEDULE", "@every 1h"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Seed: seed,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
