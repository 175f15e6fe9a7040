package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"covidboard/internal/backend"
	"covidboard/internal/cli"
	"covidboard/internal/config"
	apphttp "covidboard/internal/http"
	applog "covidboard/internal/log"
	"covidboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, logger, cfg)
	stop()
	if err != nil {
		logger.Error("Server error", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", applog.FieldError, err)
			}
		}()
	}

	// The table is read exactly once; it is never reloaded while serving.
	table, err := cli.LoadTable(ctx, logger, res.Source, cfg.LoadTimeout)
	if err != nil {
		return err
	}

	dashboard := services.NewDashboardService(table, res.Publisher, services.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})
	defer dashboard.Close()

	srv := apphttp.NewServer(":"+cfg.Port, dashboard, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting server",
		applog.FieldOperation, applog.OpStartup,
		"addr", srv.Addr,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldRows, table.Len(),
		"amqp_enabled", cfg.AMQPEnabled())

	return cli.Serve(ctx, logger, srv, 30*time.Second)
}
