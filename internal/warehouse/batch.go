package warehouse

import (
	"database/sql"
	"fmt"
	"strings"
)

// Batch is one warehouse transaction. The loader commits a batch every N
// events as a checkpoint and opens the next one; recovery after an
// interruption is a full re-run, which the idempotent writes make safe.
type Batch struct {
	tx *sql.Tx
}

// Begin opens a new batch transaction.
func (db *DB) Begin() (*Batch, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Commit commits the batch.
func (b *Batch) Commit() error {
	return b.tx.Commit()
}

// Rollback discards the batch.
func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}

// Column is one named value in a dimension row. A nil Value persists and
// matches as SQL NULL.
type Column struct {
	Name  string
	Value any
}

// Dimension describes a get-or-create target: which table, its surrogate
// key column, the natural-key columns, and attribute columns that are only
// set when the row is first created.
type Dimension struct {
	Table  string
	KeyCol string
	Keys   []Column
	Attrs  []Column
}

// GetOrCreate looks a dimension row up by its natural key and inserts it if
// absent, returning the surrogate key either way. The lookup is NULL-aware
// (a NULL key column matches only NULL). A unique-constraint conflict on
// insert resolves by re-querying, so repeated calls for the same key are
// idempotent.
func (b *Batch) GetOrCreate(dim Dimension) (int64, error) {
	if key, found, err := b.lookup(dim); err != nil || found {
		return key, err
	}

	cols := make([]string, 0, len(dim.Keys)+len(dim.Attrs))
	args := make([]any, 0, len(dim.Keys)+len(dim.Attrs))
	for _, c := range append(append([]Column{}, dim.Keys...), dim.Attrs...) {
		cols = append(cols, c.Name)
		args = append(args, c.Value)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	result, err := b.tx.Exec(
		fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
			dim.Table, strings.Join(cols, ", "), placeholders),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", dim.Table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking insert into %s: %w", dim.Table, err)
	}
	if affected == 0 {
		// Lost the race against an identical natural key.
		key, found, err := b.lookup(dim)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, fmt.Errorf("%s: insert ignored but key not found", dim.Table)
		}
		return key, nil
	}

	return result.LastInsertId()
}

// lookup selects the surrogate key by exact natural-key match.
func (b *Batch) lookup(dim Dimension) (int64, bool, error) {
	where := make([]string, 0, len(dim.Keys))
	args := make([]any, 0, len(dim.Keys))
	for _, c := range dim.Keys {
		if c.Value == nil {
			where = append(where, c.Name+" IS NULL")
		} else {
			where = append(where, c.Name+" = ?")
			args = append(args, c.Value)
		}
	}

	var key int64
	err := b.tx.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE %s",
			dim.KeyCol, dim.Table, strings.Join(where, " AND ")),
		args...,
	).Scan(&key)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up %s: %w", dim.Table, err)
	}
	return key, true, nil
}
