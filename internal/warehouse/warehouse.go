// Package warehouse owns the dimensional store: the star schema,
// the get-or-create dimension upsert, and fact/bridge writes.
package warehouse

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite warehouse connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the warehouse at the given path and brings the
// schema up to date.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating warehouse directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening warehouse: %w", err)
	}
	// The loader is a single sequential writer; one connection keeps
	// explicit transactions and PRAGMAs on the same handle.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the warehouse connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the warehouse file path.
func (db *DB) Path() string {
	return db.path
}

// Query runs a read-only query; the analytics layer issues its aggregates
// through this.
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow runs a single-row read-only query.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Rebuild drops every warehouse table and recreates the schema. This is the
// only destructive operation; the load path itself never deletes.
func (db *DB) Rebuild() error {
	drops := []string{
		"DROP TABLE IF EXISTS bridge_event_ingredient",
		"DROP TABLE IF EXISTS bridge_event_outcome",
		"DROP TABLE IF EXISTS bridge_event_reaction",
		"DROP TABLE IF EXISTS fact_event",
		"DROP TABLE IF EXISTS dim_geo",
		"DROP TABLE IF EXISTS dim_active_ingredient",
		"DROP TABLE IF EXISTS dim_outcome",
		"DROP TABLE IF EXISTS dim_reaction",
		"DROP TABLE IF EXISTS dim_breed",
	}
	for _, stmt := range drops {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("dropping table: %w", err)
		}
	}
	if _, err := db.conn.Exec("PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("resetting schema version: %w", err)
	}
	if err := migrate(db.conn); err != nil {
		return fmt.Errorf("recreating schema: %w", err)
	}
	return nil
}
