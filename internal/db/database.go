package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/yigit/ssis/internal/config"
	"github.com/yigit/ssis/internal/pkg/logger"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Database wraps a SQL connection pool together with the driver it was opened with
type Database struct {
	DB     *sql.DB
	Driver string
}

// NewDatabase opens the configured database and checks the connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		maxLifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
		}
		database, err := open("pgx", config.DriverPostgres, cfg.GetPostgresConnectionString())
		if err != nil {
			return nil, err
		}
		database.DB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		database.DB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		database.DB.SetConnMaxLifetime(maxLifetime)
		return database, nil
	case config.DriverSQLite:
		return openSQLite(cfg.GetSQLiteConnectionString())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// OpenSQLite opens a sqlite database file with foreign keys enforced.
func OpenSQLite(path string) (*Database, error) {
	return openSQLite(config.SQLiteDSN(path))
}

// openSQLite opens dsn on a single connection; SQLite allows one writer.
func openSQLite(dsn string) (*Database, error) {
	database, err := open("sqlite", config.DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	database.DB.SetMaxOpenConns(1)
	return database, nil
}

func open(driverName, driver, dsn string) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &Database{DB: sqlDB, Driver: driver}, nil
}

// Close closes the connection pool
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs a function within a transaction
func (d *Database) WithTransaction(ctx context.Context, fn TransactionFn) error {
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
