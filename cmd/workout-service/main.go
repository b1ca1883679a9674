package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
	"github.com/hediske/fitness-microservices-app/internal/workout/api"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8083"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		zlog.Logger.Info().Str("addr", srv.Addr).Msg("workout service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		zlog.Logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		zlog.Logger.Error().Err(err).Msg("server crashed")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Logger.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	zlog.Logger.Info().Msg("shutdown complete")
}
