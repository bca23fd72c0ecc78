// Command migrate applies the database schema and, on request, runs the
// one-off backfill that moves legacy single-store rows onto the
// multi-store ownership model.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/soko-labs/storefront-backend/internal/config"
	"github.com/soko-labs/storefront-backend/internal/modules/store"
	"github.com/soko-labs/storefront-backend/migrations"
)

func main() {
	down := flag.Bool("down", false, "roll the schema back instead of forward")
	legacyStores := flag.Bool("legacy-stores", false, "backfill ownership for legacy store rows after migrating")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize migrator")
	}
	defer m.Close()

	if *down {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("rollback failed")
		}
		logger.Info().Msg("schema rolled back")
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("schema up to date")

	if !*legacyStores {
		return
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	svc := store.NewService(store.NewPostgresRepository(db), logger)
	report, err := svc.MigrateLegacyStores(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("legacy store migration failed")
	}
	logger.Info().
		Int("scanned", report.Scanned).
		Int("migrated", report.Migrated).
		Int("failed", report.Failed).
		Msg("legacy store migration complete")
}
