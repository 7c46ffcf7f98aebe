package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort     string
	Environment string // "development" or "production"

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	KeycloakIssuer        string
	KeycloakClientID      string
	KeycloakRedirectURL   string
	KeycloakPublicBaseURL string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// Bearer credential signing material.
	TokenSecret   string
	TokenIssuer   string
	TokenAudience string
	TokenTTL      time.Duration

	// Bcrypt hash of the shared secret guarding bulk claims sync.
	SyncSecretHash string

	// Claims sync fan-out cap.
	SyncWorkers int

	// Page size ceiling for candidate listing queries.
	ListPageSize int
}

func Load() Config {

	cfg := Config{

		AppPort:     os.Getenv("APP_PORT"),
		Environment: os.Getenv("APP_ENV"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		KeycloakIssuer:        os.Getenv("KEYCLOAK_ISSUER"),
		KeycloakClientID:      os.Getenv("KEYCLOAK_CLIENT_ID"),
		KeycloakRedirectURL:   os.Getenv("KEYCLOAK_REDIRECT_URL"),
		KeycloakPublicBaseURL: os.Getenv("KEYCLOAK_PUBLIC_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		TokenIssuer:   os.Getenv("TOKEN_ISSUER"),
		TokenAudience: os.Getenv("TOKEN_AUDIENCE"),
		TokenTTL:      durationEnv("TOKEN_TTL", 24*time.Hour),

		SyncSecretHash: os.Getenv("SYNC_SECRET_HASH"),
		SyncWorkers:    intEnv("SYNC_WORKERS", 16),

		ListPageSize: intEnv("LIST_PAGE_SIZE", 50),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TokenIssuer == "" {
		cfg.TokenIssuer = "pivotai-auth"
	}
	if cfg.TokenAudience == "" {
		cfg.TokenAudience = "pivotai"
	}

	return cfg

}

// Development reports whether the service runs in development mode.
// Development mode relaxes the bulk-sync secret gate and allows the
// candidate-listing override.
func (c Config) Development() bool {
	return c.Environment == "development"
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
