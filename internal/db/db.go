// Package db opens the Postgres connection pool through the pgx database/sql
// driver and provides the small transaction helpers shared by repositories.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, set DATABASE_URL")
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("database healthcheck failed")
)

// Config is the subset of process configuration the pool needs.
type Config interface {
	GetDatabaseURL() string
	GetDBMaxOpenConns() int
	GetDBMaxIdleConns() int
	GetDBConnMaxLifetime() time.Duration
}

const (
	connectAttempts = 3
	connectInterval = 2 * time.Second
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates the pool and pings it, retrying with a linear backoff so the
// server can start alongside the database container.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.GetDatabaseURL() == "" {
		return nil, ErrEmptyConnectionString
	}

	db, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	db.SetMaxOpenConns(cfg.GetDBMaxOpenConns())
	db.SetMaxIdleConns(cfg.GetDBMaxIdleConns())
	db.SetConnMaxLifetime(cfg.GetDBConnMaxLifetime())

	var pingErr error
	for i := range connectAttempts {
		if pingErr = db.PingContext(ctx); pingErr == nil {
			return db, nil
		}
		log.Warn().Err(pingErr).Int("attempt", i+1).Msg("Database not ready")

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * connectInterval):
		}
	}

	_ = db.Close()
	return nil, errors.Join(ErrFailedToOpenDBConnection, pingErr)
}

// WithTx begins a transaction, runs fn with the transactional handle, and
// commits on success or rolls back on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", commitErr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// Healthcheck returns a closure suitable for the health endpoint.
func Healthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
