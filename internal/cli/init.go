// Package cli provides common CLI initialization utilities shared by
// cmd/covidboard and cmd/covidboard-import.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"covidboard/internal/config"
	"covidboard/internal/core"
	"covidboard/internal/dataset"
	applog "covidboard/internal/log"
)

// SetupLogger initializes structured logging at the given level name and
// sets it as the default logger. Unknown names fall back to info.
func SetupLogger(level string) *applog.Logger {
	lvl, _ := config.ParseLogLevel(level)
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadTable reads the table once from src, bounded by timeout.
func LoadTable(ctx context.Context, logger *applog.Logger, src dataset.Source, timeout time.Duration) (*core.Table, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	logger.Info("Table loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldRows, table.Len(),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return table, nil
}

// Server is the part of http.Server that Serve drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs srv until ctx is cancelled or the listener fails, then shuts
// it down within timeout. A clean shutdown returns nil.
func Serve(ctx context.Context, logger *applog.Logger, srv Server, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
