package database

import (
	"context"
	"fmt"
	"strings"

	"traderoute/internal/log"
)

// Migration is one schema step
type Migration struct {
	ID          int
	Description string
	SQL         string
}

// migrations contains all schema migrations in order
var migrations = []Migration{
	{
		ID:          1,
		Description: "World tables",
		SQL: `
CREATE TABLE IF NOT EXISTS races (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS galaxies (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS sectors (
	id INTEGER PRIMARY KEY,
	galaxy INTEGER NOT NULL DEFAULT 0,
	planet BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS sector_links (
	sector_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	kind TEXT NOT NULL,
	target INTEGER NOT NULL,
	warp BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (sector_id, warp, position),
	FOREIGN KEY (sector_id) REFERENCES sectors(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS locations (
	sector_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (sector_id, position),
	FOREIGN KEY (sector_id) REFERENCES sectors(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS ports (
	sector_id INTEGER PRIMARY KEY,
	race INTEGER NOT NULL,
	level INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (sector_id) REFERENCES sectors(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS port_goods (
	sector_id INTEGER NOT NULL,
	good INTEGER NOT NULL,
	status INTEGER NOT NULL,
	distance REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (sector_id, good),
	FOREIGN KEY (sector_id) REFERENCES ports(sector_id) ON DELETE CASCADE
);`,
	},
	{
		ID:          2,
		Description: "Route results",
		SQL: `
CREATE TABLE IF NOT EXISTS route_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ranking TEXT NOT NULL,
	position INTEGER NOT NULL,
	score REAL NOT NULL,
	turns INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_route_results_ranking ON route_results(ranking, position);
CREATE TABLE IF NOT EXISTS route_legs (
	result_id INTEGER NOT NULL,
	leg_index INTEGER NOT NULL,
	sell_sector INTEGER NOT NULL,
	buy_sector INTEGER NOT NULL,
	sell_race INTEGER NOT NULL,
	buy_race INTEGER NOT NULL,
	sell_distance REAL NOT NULL,
	buy_distance REAL NOT NULL,
	turns INTEGER NOT NULL,
	hops INTEGER NOT NULL,
	good INTEGER NOT NULL,
	PRIMARY KEY (result_id, leg_index),
	FOREIGN KEY (result_id) REFERENCES route_results(id) ON DELETE CASCADE
);`,
	},
}

// runMigrations executes all pending migrations
func (d *DB) runMigrations(ctx context.Context) error {
	if err := d.ensureSchemaVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := d.currentSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.ID <= current {
			continue
		}
		log.Info("applying migration", "id", m.ID, "description", m.Description)
		if err := d.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.ID, err)
		}
	}
	return nil
}

func (d *DB) ensureSchemaVersionTable(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

// SchemaVersion returns the highest applied migration
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.currentSchemaVersion(ctx)
}

func (d *DB) currentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration runs one migration in a transaction
func (d *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(m.SQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?);`, m.ID); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
