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

	"storefront/internal/app"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/router"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the client state store
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStore()

	// Load the seed catalogue (S3 with local fallback, else built in)
	seed := app.SeedFromConfig(ctx, cfg, logger)

	// Hydrate application state
	a := app.New(ctx, store, app.OptionsFromConfig(cfg, seed), logger)
	defer a.Close()

	// Metrics
	m := metrics.NewServerMetrics("server", nil)
	a.Checkout.OnTransition(func(t checkout.Transition) {
		switch t.To {
		case checkout.StateSuccess, checkout.StateFailed:
			m.Checkouts.WithLabelValues(string(t.To)).Inc()
		}
	})

	// Initialize router
	mux := router.New(a, m, cfg.Server.AllowedOrigin, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.API.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(sigCtx, server, logger.With().Str("storage", cfg.Storage.Backend).Logger())
}

// writeTimeout leaves room for a checkout request: the remote call, bounded by
// the API timeout, followed by the processing delay.
func writeTimeout(apiTimeout time.Duration) time.Duration {
	return max(15*time.Second, apiTimeout+checkout.ProcessingDelay+5*time.Second)
}

// serve runs server until ctx is done, then drains it. A checkout in its
// processing delay finishes within the drain window.
func serve(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", server.Addr).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received, draining connections")

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed, closing")
		_ = server.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("server shutdown completed")
	return nil
}
