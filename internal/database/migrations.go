package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SeedCategories upserts the category registry so expenses can reference it.
func SeedCategories(ctx context.Context, db PGXDB, categories []models.Category) error {
	for i, cat := range categories {
		_, err := db.Exec(ctx, `
			INSERT INTO categories (key, label, position) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET label = EXCLUDED.label, position = EXCLUDED.position
		`, cat.Key, cat.Label, i)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat.Key, err)
		}
	}

	return nil
}
