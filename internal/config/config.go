package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens outside release mode when JWT_SECRET is unset
const DevJWTSecret = "card-market-dev-secret"

// ErrMissingJWTSecret is returned in release mode when JWT_SECRET is unset
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET must be set in release mode")

type Config struct {
	// Server
	Port    string
	GinMode string

	// Database; empty DSN selects the in-memory store
	DatabaseDSN string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Logging
	LogLevel string

	// SeedDemo mints demo cards and funds demo wallets on startup
	SeedDemo bool
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, err
	}
	seed, err := strconv.ParseBool(getEnv("SEED_DEMO", "true"))
	if err != nil {
		return nil, err
	}

	ginMode := getEnv("GIN_MODE", "release")
	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		if ginMode == "release" {
			return nil, ErrMissingJWTSecret
		}
		secret = DevJWTSecret
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     ginMode,
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		JWTSecret:   secret,
		JWTExpiry:   expiry,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SeedDemo:    seed,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
