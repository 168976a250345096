// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/nexastore/nexastore/internal/config"
	"codeberg.org/nexastore/nexastore/internal/database"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"codeberg.org/nexastore/nexastore/internal/services/verification"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: withDB(database.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "Roll back the latest migration",
				Action: withDB(database.MigrateDown),
			},
			{
				Name:   "reset",
				Usage:  "Roll back all migrations",
				Action: withDB(database.MigrateReset),
			},
		},
	}
}

func pruneCodesCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune-codes",
		Usage: "Delete expired and consumed verification codes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.NewFromCLI(cmd)
			db, err := database.Open(cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			n, err := verification.NewService(repository.New(db), cfg.Auth.CodeTTL).Prune(ctx)
			if err != nil {
				return err
			}
			slog.Info("verification codes pruned", "deleted", n)
			return nil
		},
	}
}

// withDB opens the configured database without migrating it and runs fn.
func withDB(fn func(*sqlx.DB) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		db, err := database.OpenWithoutMigrations(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if err := fn(db); err != nil {
			return err
		}
		slog.Info("migrations applied", "command", cmd.Name, "database", database.DialectFor(cfg.Database.DSN))
		return nil
	}
}
