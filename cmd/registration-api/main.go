package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"Registration-Intake/internals/config"
	"Registration-Intake/internals/credentials"
	"Registration-Intake/internals/logging"
	"Registration-Intake/internals/server"
	"Registration-Intake/internals/storage"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	logger := logging.GetLogger("registration-api")
	logger.Info().Str("driver", cfg.Database.Driver).Str("table", cfg.Database.Table).Msg("Config loaded")

	store, err := storage.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up database")
	}
	defer store.Close()

	if cfg.Database.CreateTable {
		if err := store.EnsureTable(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create table")
		}
		logger.Info().Str("table", store.Table()).Msg("Table created or already exists")
	}

	if cfg.Security.HashPasswords {
		logger.Info().Int("cost", cfg.Security.BcryptCost).Msg("Passwords will be stored as bcrypt hashes")
	} else {
		logger.Warn().Msg("Passwords are stored as received")
	}
	hasher := credentials.Select(cfg.Security.HashPasswords, cfg.Security.BcryptCost)

	srv := server.New(cfg, server.NewRouter(cfg, store, hasher, log.Logger))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-done
	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown server")
	}
	logger.Info().Msg("Server stopped")
}
