package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lifelink-backend/internal/app"
	"lifelink-backend/internal/config"
	"lifelink-backend/internal/sweeper"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	fiberApp, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create failed")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("database handle unavailable")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		log.Info().Msg("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The sweeper belongs to this process, not to a hidden global: it gets
	// the same DB handle the request handlers use and dies with the context.
	if db != nil {
		sw := &sweeper.Sweeper{DB: db, Interval: cfg.SweepInterval}
		go sw.Run(ctx)
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("listener stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := fiberApp.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
