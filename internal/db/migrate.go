package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/itzfoxbrz/KamikaZL2/internal/db/migrations"
)

// RunMigrations applies the embedded goose migrations through pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// closing sqlDB leaves pool open
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(results) > 0 {
		slog.Info("applied database migrations", "count", len(results))
	}
	return nil
}
