package backend

import (
	"context"
	"time"

	"covidboard/internal/amqp"
	"covidboard/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the table source, the event publisher and a
// cleanup releasing whatever the two hold open.
type BackendResult struct {
	Source    dataset.Source
	Publisher amqp.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// CSV specific
	DataPath string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetRange    string

	// AMQP publisher, disabled when AMQPURL is empty
	AMQPURL          string
	AMQPExchange     string
	AMQPQueue        string
	AMQPConnectTries int
	AMQPTimeout      time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SheetsBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
