// Package database stores worlds and generated routes in SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"traderoute/internal/log"
)

// ErrNotOpen is returned by every operation on a closed database
var ErrNotOpen = errors.New("database not open")

// DB is a SQLite-backed store for worlds and route results
type DB struct {
	mu       sync.RWMutex
	db       *sql.DB
	filename string
}

// psql builds statements with SQLite placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Open opens or creates the database at filename and applies pending migrations
func Open(ctx context.Context, filename string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", filename+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared between calls.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{db: sqlDB, filename: filename}
	if err := d.runMigrations(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug("database opened", "file", filename)
	return d, nil
}

// Close closes the database. Closing twice returns ErrNotOpen.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return ErrNotOpen
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Filename returns the path the database was opened with
func (d *DB) Filename() string {
	return d.filename
}

func (d *DB) checkOpen() error {
	if d.db == nil {
		return ErrNotOpen
	}
	return nil
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// exec builds and runs a squirrel statement inside tx
func exec(ctx context.Context, tx *sql.Tx, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return tx.ExecContext(ctx, query, args...)
}

// query builds and runs a squirrel select against the database
func (d *DB) query(ctx context.Context, b squirrel.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return d.db.QueryContext(ctx, query, args...)
}
