package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ridegauge/traffic-dashboard/internal/config"
	"github.com/ridegauge/traffic-dashboard/monitor"
	"github.com/ridegauge/traffic-dashboard/server"
	"github.com/ridegauge/traffic-dashboard/sessions"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// Optional .env for local development; system environment wins otherwise.
	_ = godotenv.Load()

	cfg := config.New()
	setupLogging(cfg)
	displayAppname(cfg.GetAppName())

	store, err := monitor.OpenStore(cfg.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	creds := config.NewCredentialResolver(cfg.GetCredentialsFile())
	if !creds.Resolve().Configured() {
		log.Warn().Msg("strava credentials not configured; dashboard will prompt for setup")
	}

	srv := &http.Server{
		Addr: cfg.GetPort(),
		Handler: server.New(cfg, creds, sessions.NewInMemoryRepo(), store,
			server.WithLogger(log.Logger)),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_url", cfg.GetBaseURL()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server.ListenAndServe: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stopSignal():
	}
	return shutdown(srv)
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func setupLogging(cfg config.Config) {
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
