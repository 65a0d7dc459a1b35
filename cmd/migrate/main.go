package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/kitengela/studio/internal/config"
	"github.com/kitengela/studio/internal/database"
	pkglogger "github.com/kitengela/studio/pkg/logger"
	_ "github.com/lib/pq"
)

const usage = `usage: migrate <command> [args]

commands:
  up                   apply all pending migrations
  up-to VERSION        apply migrations up to VERSION
  down                 roll back the most recent migration
  down-to VERSION      roll back to VERSION
  redo                 roll back and re-apply the most recent migration
  status               print the status of all migrations
  version              print the current schema version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(pkglogger.New(os.Stdout, cfg.Server.LogLevel))

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	command := os.Args[1]
	if err := database.RunMigrations(context.Background(), db, command, os.Args[2:]...); err != nil {
		slog.Error("migration failed", slog.String("command", command), slog.Any("error", err))
		db.Close()
		os.Exit(1)
	}
}
