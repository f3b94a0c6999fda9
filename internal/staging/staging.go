// Package staging holds raw API payloads, one JSON document per row, so the
// warehouse load can run repeatedly over an immutable local snapshot instead
// of the network. The staging store is read-only during a warehouse load.
package staging

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Staging table names.
const (
	TableEvents    = "staging_events"
	TableDogBreeds = "staging_dog_breeds"
	TableCatBreeds = "staging_cat_breeds"
)

var tables = []string{TableEvents, TableDogBreeds, TableCatBreeds}

// DB wraps the staging SQLite store.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the staging store at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening staging store: %w", err)
	}

	for _, table := range tables {
		_, err := conn.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				payload TEXT NOT NULL
			)`, table))
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("creating %s: %w", table, err)
		}
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the staging store.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the staging store file path.
func (db *DB) Path() string {
	return db.path
}

// LoadJSONL replaces a table's contents with one row per non-blank line of a
// newline-delimited JSON file. A missing file loads zero rows.
func (db *DB) LoadJSONL(table, path string) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning staging load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}

	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := tx.Exec("INSERT INTO "+table+" (payload) VALUES (?)", line); err != nil {
			return 0, fmt.Errorf("staging row into %s: %w", table, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing staging load: %w", err)
	}
	return count, nil
}

// LoadJSONArray replaces a table's contents with one row per element of a
// JSON array file. A single top-level object stages as one row; a missing
// file loads zero rows.
func (db *DB) LoadJSONArray(table, path string) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// Tolerate a single object where an array was expected.
		var single json.RawMessage
		if err := json.Unmarshal(data, &single); err != nil {
			return 0, fmt.Errorf("parsing %s: %w", path, err)
		}
		items = []json.RawMessage{single}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning staging load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}
	for _, item := range items {
		if _, err := tx.Exec("INSERT INTO "+table+" (payload) VALUES (?)", string(item)); err != nil {
			return 0, fmt.Errorf("staging row into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing staging load: %w", err)
	}
	return len(items), nil
}

// ForEachPayload streams a table's payloads in insertion order.
func (db *DB) ForEachPayload(table string, fn func(payload []byte) error) error {
	if err := checkTable(table); err != nil {
		return err
	}

	rows, err := db.conn.Query("SELECT payload FROM " + table + " ORDER BY id")
	if err != nil {
		return fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		if err := fn([]byte(payload)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of staged rows in a table.
func (db *DB) Count(table string) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}

func checkTable(table string) error {
	for _, known := range tables {
		if table == known {
			return nil
		}
	}
	return fmt.Errorf("unknown staging table %q", table)
}
