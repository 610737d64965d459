// Package main is the entry point for the referral hub API server. It stays
// minimal: load config, build the logger, open the chosen storage backend,
// optionally seed demo data, and hand off to internal/server.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/config"
	"github.com/haidang/referral-hub/internal/repository"
	"github.com/haidang/referral-hub/internal/repository/flatfile"
	sqliteRepo "github.com/haidang/referral-hub/internal/repository/sqlite"
	"github.com/haidang/referral-hub/internal/server"
	"github.com/haidang/referral-hub/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET must be set (try: openssl rand -hex 32)")
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("store", cfg.Store),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	if cfg.Seed {
		seeder := service.NewSeeder(store, auth.NewPasswordService(), logger)
		if err := seeder.Run(context.Background()); err != nil {
			logger.Error("seeding failed", slog.String("error", err.Error()))
			store.Close()
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		store.Close()
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore builds the configured backend. sqlite is the default; flatfile
// keeps compatibility with data directories written by earlier deployments.
func openStore(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreFlatfile:
		return flatfile.New(cfg.DataDir, logger)
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return sqliteRepo.New(cfg.DBPath)
	}
}
