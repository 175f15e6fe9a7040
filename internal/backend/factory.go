package backend

import (
	"context"
	"fmt"

	"covidboard/internal/amqp"
	"covidboard/internal/dataset"
	"covidboard/internal/dataset/sheets"
	applog "covidboard/internal/log"
	"covidboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentDataset),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case CSVBackend:
		result = f.createCSVBackend(config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result.Publisher, result.Cleanup = f.createPublisher(ctx, config, result.Cleanup)
	return result, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) *BackendResult {
	f.logger.Info("Initialized CSV backend", "path", config.DataPath)
	return &BackendResult{Source: dataset.FileSource{Path: config.DataPath}}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Source: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	src, err := sheets.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetRange)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"range", config.GoogleSheetRange)
	return &BackendResult{Source: src}, nil
}

// createPublisher connects the AMQP client when configured. A broker that
// cannot be reached is logged and the dashboard runs without events.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config, cleanup CleanupFunc) (amqp.Publisher, CleanupFunc) {
	if config.AMQPURL == "" {
		return amqp.NoopPublisher{}, cleanup
	}

	client := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	connectCtx, cancel := context.WithTimeout(ctx, config.AMQPTimeout)
	defer cancel()
	if err := client.Connect(connectCtx, config.AMQPConnectTries); err != nil {
		f.logger.Warn("Failed to connect to AMQP broker, publishing will retry lazily",
			applog.FieldError, err,
			"exchange", config.AMQPExchange)
	} else {
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
	}

	return client, func() error {
		err := client.Close()
		if cleanup != nil {
			if cerr := cleanup(); err == nil {
				err = cerr
			}
		}
		return err
	}
}
