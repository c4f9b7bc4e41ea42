package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration, populated from environment variables.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"leadvault"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"leadvault_dev_password"`
	DBName     string `env:"DB_NAME" envDefault:"leadvault"`

	RedisAddr    string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisTimeout time.Duration `env:"REDIS_TIMEOUT" envDefault:"5s"`

	// Separate secrets so a refresh token can never pass as an access
	// token or vice versa.
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// CookieSecure should be true behind TLS; left off for local development.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment. Missing JWT secrets fall
// back to random per-process values, which is fine for development but means
// tokens do not survive a restart.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = generateDefaultSecret()
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = generateDefaultSecret()
	}

	return cfg, nil
}

func generateDefaultSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "dev-secret-change-in-production"
	}
	return hex.EncodeToString(bytes)
}
