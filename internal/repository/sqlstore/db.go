// Package sqlstore implements the repositories on top of sqlx. PostgreSQL is
// reached through lib/pq ("postgres") or pgx ("pgx"); SQLite through modernc
// ("sqlite") for local runs and tests.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// Open creates a new database connection pool for the configured driver.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// one connection: in-memory databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(10), // Limit to 10 concurrent transactions
	}, nil
}

func dataSource(cfg config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Driver {
	case "", "postgres", "pgx":
		driver = cfg.Driver
		if driver == "" {
			driver = "postgres"
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return driver, dsn, nil
	case "sqlite":
		if cfg.Path == "" {
			return "", "", fmt.Errorf("sqlite driver requires a database path")
		}
		return "sqlite", cfg.Path, nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

func (db *DB) isSQLite() bool {
	return db.DriverName() == "sqlite"
}
