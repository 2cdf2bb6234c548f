// Package main is the entry point for the expense ledger command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/yelinaung/expense-ledger/internal/alerts"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/config"
	"gitlab.com/yelinaung/expense-ledger/internal/database"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("expense-ledger %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load config")
		return 1
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	if err := logger.SetHashSalt(cfg.LogHashSalt); err != nil {
		logger.Log.Error().Err(err).Msg("Invalid LOG_HASH_SALT")
		return 1
	}

	shutdown, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to set up telemetry")
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	budgets, err := alerts.ParseBudgets([]byte(cfg.CategoryBudgets))
	if err != nil {
		logger.Log.Error().Err(err).Msg("Invalid CATEGORY_BUDGETS")
		return 1
	}

	registry := categories.Default()
	store, closeStore, err := openStore(ctx, cfg, registry)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to open store")
		return 1
	}
	defer closeStore()

	a := newApp(cfg, store, registry, budgets, os.Stdout)
	return a.exec(ctx, os.Args[1:])
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, registry *categories.Registry) (repository.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Log.Warn().Msg("Using in-memory store, nothing will be persisted")
		return repository.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err := database.SeedCategories(ctx, pool, registry.All()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Log.Debug().Msg("Database initialized successfully")
	return repository.NewPostgresStore(pool), pool.Close, nil
}
