package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/agent"
	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/handlers"
	"github.com/aaronzipp/crewmate/internal/logger"
	"github.com/aaronzipp/crewmate/internal/manager"
	"github.com/aaronzipp/crewmate/internal/sse"
	"github.com/aaronzipp/crewmate/internal/storage"
	"github.com/aaronzipp/crewmate/internal/storage/postgres"
	"github.com/aaronzipp/crewmate/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "crewmate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, cfg.Debug, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	if repo != nil {
		defer func() {
			if err := repo.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close storage")
			}
		}()
	}

	hub := sse.NewHub(sse.Options{
		Rate:        cfg.NotifyRate,
		Burst:       cfg.NotifyBurst,
		SendTimeout: cfg.NotifyTimeout,
		Logger:      log,
	})
	defer hub.Close()

	mgr := manager.New(manager.Options{
		Tuning:   cfg.Tuning,
		Repo:     repo,
		Notifier: hub,
		Driver:   agent.New(agent.Options{Logger: log}),
		Logger:   log,
	})
	restored, err := mgr.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	log.Info().Int("sessions", restored).Msg("restored persisted games")

	h := &handlers.Context{
		Manager:      mgr,
		Hub:          hub,
		FillWithBots: cfg.FillWithBots,
		Log:          log.With().Str("component", "http").Logger(),
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// streams only end once the hub lets go of them
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("session shutdown")
	}
	return nil
}

// openRepository picks the configured storage backend. "memory" runs
// without persistence.
func openRepository(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.Repository, error) {
	log = log.With().Str("component", "storage").Str("driver", cfg.StorageDriver).Logger()
	switch cfg.StorageDriver {
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := postgres.Open(ctx, cfg.PostgresURL, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory", "":
		log.Warn().Msg("games will not survive a restart")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
