package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kitengela/studio/migrations"
	"github.com/pressly/goose/v3"
)

// Migrate applies the embedded goose migrations through the pool's connection settings.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	return RunMigrations(ctx, sqlDB, "up")
}

// RunMigrations runs a goose command ("up", "down", "status", ...) against sqlDB
// using the embedded migration files.
func RunMigrations(ctx context.Context, sqlDB *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log.New(slogWriter{}, "", 0))

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, sqlDB, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// slogWriter forwards goose's line-oriented output to the default slog logger.
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	slog.Info("migration", slog.String("output", string(p)))
	return len(p), nil
}
