// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/atlastrips/proposal-engine/internal/database"
	"github.com/atlastrips/proposal-engine/internal/handler"
	"github.com/atlastrips/proposal-engine/internal/repository"
	"github.com/atlastrips/proposal-engine/internal/service"
)

type serverConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

func main() {
	ctx := context.Background()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		log.Fatal().Err(err).Msg("parse server config")
	}
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("parse database config")
	}

	pool, err := database.NewPool(ctx, dbCfg, log.With().Str("component", "database").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	proposalRepo := repository.NewProposalRepository(pool)
	inclusionRepo := repository.NewInclusionRepository(pool)
	guestRepo := repository.NewGuestRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	svc := service.NewProposalService(
		proposalRepo, inclusionRepo, guestRepo, activityRepo,
		log.With().Str("component", "service").Logger(),
	)
	proposalHandler := handler.NewProposalHandler(svc)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(log.With().Str("component", "http").Logger()))

	r.Get("/health", handler.HealthCheck)
	proposalHandler.Routes(r)

	srv := &http.Server{
		Addr:         ":" + srvCfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
