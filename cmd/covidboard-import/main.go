// Command covidboard-import loads the patient CSV and stores it as the
// SQLite snapshot read by DATA_BACKEND=sqlite.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"covidboard/internal/cli"
	"covidboard/internal/config"
	"covidboard/internal/dataset"
	applog "covidboard/internal/log"
	"covidboard/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	// The snapshot may not exist yet, so only the defaults are read here.
	cfg := config.Load()

	csvPath := flag.String("csv", cfg.DataPath, "patient CSV to import")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite snapshot to write")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, logger, *csvPath, *dbPath)
	stop()
	if err != nil {
		logger.Error("Import failed", applog.FieldOperation, applog.OpImport, applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, csvPath, dbPath string) error {
	table, err := cli.LoadTable(ctx, logger, dataset.FileSource{Path: csvPath}, 0)
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ReplaceSnapshot(ctx, table, csvPath); err != nil {
		return err
	}
	info, err := repo.Info(ctx)
	if err != nil {
		return err
	}
	logger.Info("Snapshot imported",
		applog.FieldOperation, applog.OpImport,
		"db_path", dbPath,
		"source", info.Source,
		applog.FieldRows, info.Rows,
		"imported_at", info.ImportedAt)
	return nil
}
