package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/featuredesk/backend/internal/config"
	"github.com/featuredesk/backend/internal/db"
	httpapi "github.com/featuredesk/backend/internal/http"
	"github.com/featuredesk/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "featuredesk-backend").Logger()

	ctx := context.Background()

	var store service.Store
	if cfg.DatabaseURL == "" {
		mem := db.NewMemStore()
		_ = mem.SeedUsers(ctx, db.DefaultUsers())
		store = mem
		logger.Info().Msg("using in-memory store")
	} else {
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
		if err := pg.SeedUsers(ctx, db.DefaultUsers()); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed users")
		}
		store = pg
	}

	lifecycle := service.NewLifecycle(store, logger)
	predictor := service.NewPredictor(cfg.PredictionSeed)
	catalog := service.DefaultCatalog()
	if cfg.PredictionSeed != 0 {
		logger.Info().Int64("seed", cfg.PredictionSeed).Msg("deterministic predictions enabled")
	}

	router := httpapi.Router(cfg, store, lifecycle, predictor, catalog, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
