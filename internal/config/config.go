// Package config loads server configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable via the STORE variable.
const (
	StoreSQLite   = "sqlite"
	StoreFlatfile = "flatfile"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port      int
	Env       string // "development" or "production"
	Store     string // sqlite | flatfile
	DBPath    string // sqlite database file
	DataDir   string // flatfile data directory
	JWTSecret string
	// RateLimit is the per-IP request budget per 15-minute window.
	// 0 disables rate limiting (it is only enabled in production anyway).
	RateLimit int
	Seed      bool // seed demo accounts and jobs on an empty store

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Load reads a .env file if present (never an error when missing) and then
// the environment. Defaults suit local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      3000,
		Env:       getenv("APP_ENV", "development"),
		Store:     getenv("STORE", StoreSQLite),
		DBPath:    getenv("DB_PATH", "data/referralhub.db"),
		DataDir:   getenv("DATA_DIR", "data"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RateLimit: 1000,
		Seed:      os.Getenv("SEED") == "1",

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if limitStr := os.Getenv("RATE_LIMIT"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT %q: %w", limitStr, err)
		}
		cfg.RateLimit = limit
	}

	if cfg.Store != StoreSQLite && cfg.Store != StoreFlatfile {
		return nil, fmt.Errorf("config: unknown STORE %q (want %s or %s)",
			cfg.Store, StoreSQLite, StoreFlatfile)
	}

	if cfg.GoogleCallbackURL == "" && cfg.GoogleClientID != "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
