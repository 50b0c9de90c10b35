// Package database provides the profile database connection, schema and helpers.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// Options describes how to reach the profile database.
type Options struct {
	Driver          string
	Path            string // sqlite file
	URL             string // libsql url
	AuthToken       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DataSourceName builds the driver-specific DSN.
func (o Options) DataSourceName() (string, error) {
	switch o.Driver {
	case DriverSQLite, "":
		if o.Path == "" {
			return "", fmt.Errorf("sqlite path is required")
		}
		return o.Path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", nil
	case DriverLibSQL:
		if o.URL == "" {
			return "", fmt.Errorf("libsql url is required")
		}
		if o.AuthToken == "" {
			return o.URL, nil
		}
		return fmt.Sprintf("%s?authToken=%s", o.URL, o.AuthToken), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", o.Driver)
}

// Open connects with opts, applies pool limits and creates the schema.
func Open(opts Options, logger *logging.ChanneledLogger) (*DB, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	if opts.Driver == DriverSQLite && opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn, err := opts.DataSourceName()
	if err != nil {
		return nil, err
	}

	db, err := NewConnectionWithLogger(opts.Driver, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", opts.Driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := NewTableCreator().CreateSchema(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(driverName, dataSourceName string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		db.Close()
		return nil, err
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driverName, "duration", duration)
	CheckAndLogSlowQuery(logger, "DATABASE_CONNECTION", duration, "system")

	return &DB{DB: db, Driver: driverName}, nil
}
