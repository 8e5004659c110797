package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/app"
	"unihaven/internal/shared"
	mysqlrepo "unihaven/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	rep, err := app.NewSeeder(mysqlrepo.New(db), cfg.SeedWorkers).Seed(ctx, shared.SeedData())
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	if rep.Skipped {
		log.Info().Msg("initial data already present; nothing to do")
		return
	}
	log.Info().
		Int("accommodations", rep.Accommodations).
		Int("failed", rep.Failed).
		Msg("seeding completed")
}
