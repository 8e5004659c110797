package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "unihaven/internal/adapters/http_server"
	"unihaven/internal/adapters/als"
	"unihaven/internal/adapters/observability"
	redisad "unihaven/internal/adapters/redis"
	"unihaven/internal/app"
	"unihaven/internal/domain"
	"unihaven/internal/shared"
	"unihaven/internal/storage/memory"
	mysqlrepo "unihaven/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// A nil interface, not a nil *redisad.Cache, disables caching.
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; cache errors will be ignored")
		}
		defer rc.Close()
		cache = rc
	}

	lookup := als.New(cfg.ALSBase, cfg.ALSRPS)

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Accommodations: app.NewAccommodationService(store, lookup, cache, cfg.CacheTTL),
		Search:         app.NewSearchService(store, cache, cfg.CacheTTL),
		Reservations:   app.NewReservationService(store, cache, cfg.CacheTTL),
		Ratings:        app.NewRatingService(store, cache, cfg.CacheTTL),
		Audit:          app.NewAuditService(store),
		Directory:      app.NewDirectoryService(store, cache, cfg.CacheTTL),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore returns the configured store and its cleanup. The memory store
// is seeded on start so a fresh process is usable.
func openStore(ctx context.Context, cfg shared.Config) (domain.Store, func()) {
	if cfg.Store == "memory" {
		st := memory.New()
		rep, err := app.NewSeeder(st, cfg.SeedWorkers).Seed(ctx, shared.SeedData())
		if err != nil {
			log.Fatal().Err(err).Msg("seeding memory store failed")
		}
		log.Info().Int("accommodations", rep.Accommodations).Msg("memory store seeded")
		return st, func() {}
	}

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connection ok")
	if cfg.MigrateOnStart {
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
	return mysqlrepo.New(db), func() { closeDB(db) }
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
}
