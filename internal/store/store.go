// Package store wraps the subset of the host SQLite engine the index core
// consumes: parameterized SQL, identifier-safe dynamic DDL, savepoints,
// incremental BLOB handles, zeroblob row allocation and change counting.
package store

import (
	"errors"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrRowNotFound signals that a BLOB open or reload hit a missing row. It is
// internal to the module: search and delete translate it into lazy
// dangling-edge handling, never into a caller-visible error.
var ErrRowNotFound = errors.New("row not found")

// ErrIO marks host BLOB I/O failures: open, seek, read and write on an
// incremental handle. It lives here, below the blob wrapper, so both layers
// wrap the same sentinel.
var ErrIO = errors.New("block I/O failure")

// DB borrows one host connection. The core never owns the connection's
// lifecycle; Close on the index leaves it untouched.
type DB struct {
	conn *sqlite.Conn
}

// New wraps a borrowed connection.
func New(conn *sqlite.Conn) *DB {
	return &DB{conn: conn}
}

// Conn returns the underlying borrowed connection.
func (d *DB) Conn() *sqlite.Conn {
	return d.conn
}

// Exec runs a statement with bound arguments and no result rows.
func (d *DB) Exec(query string, args ...any) error {
	return sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{Args: args})
}

// SelectInt64 runs a single-column query and returns the first row's value.
// ok is false when the query produced no rows.
func (d *DB) SelectInt64(query string, args ...any) (value int64, ok bool, err error) {
	err = sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnInt64(0)
			ok = true
			return nil
		},
	})
	return value, ok, err
}

// TableExists reports whether the named table exists in the schema.
func (d *DB) TableExists(schema, table string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT count(*) FROM %s.sqlite_master WHERE type = 'table' AND name = ?", schema)
	n, _, err := d.SelectInt64(query, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s.%s: %w", schema, table, err)
	}
	return n > 0, nil
}

// RandomRowID picks a uniformly random row id from the table using the
// host's random source. ok is false when the table is empty.
func (d *DB) RandomRowID(schema, table string) (int64, bool, error) {
	query := fmt.Sprintf("SELECT id FROM %s.%s ORDER BY RANDOM() LIMIT 1", schema, table)
	return d.SelectInt64(query)
}

// RowExists reports whether the table has a row with the given id.
func (d *DB) RowExists(schema, table string, id int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s.%s WHERE id = ?", schema, table)
	_, ok, err := d.SelectInt64(query, id)
	return ok, err
}

// InsertZeroBlobRow allocates a fixed-size all-zero BLOB row, ready for
// incremental writes.
func (d *DB) InsertZeroBlobRow(schema, table string, id int64, size int) error {
	query := fmt.Sprintf("INSERT INTO %s.%s (id, data) VALUES (?, zeroblob(?))", schema, table)
	return d.Exec(query, id, size)
}

// DeleteRow deletes the row with the given id and returns the number of rows
// the statement changed.
func (d *DB) DeleteRow(schema, table string, id int64) (int, error) {
	query := fmt.Sprintf("DELETE FROM %s.%s WHERE id = ?", schema, table)
	if err := d.Exec(query, id); err != nil {
		return 0, err
	}
	return d.conn.Changes(), nil
}

// CountRows returns the table's row count.
func (d *DB) CountRows(schema, table string) (int64, error) {
	query := fmt.Sprintf("SELECT count(*) FROM %s.%s", schema, table)
	n, _, err := d.SelectInt64(query)
	return n, err
}

// OpenBlob opens an incremental BLOB handle on the data column of the given
// row. A missing row maps to ErrRowNotFound so that callers can distinguish
// dangling edges from real I/O failures.
func (d *DB) OpenBlob(schema, table string, rowID int64, writable bool) (*sqlite.Blob, error) {
	blob, err := d.conn.OpenBlob(schema, table, "data", rowID, writable)
	if err != nil {
		exists, existsErr := d.RowExists(schema, table, rowID)
		if existsErr == nil && !exists {
			return nil, ErrRowNotFound
		}
		return nil, fmt.Errorf("%w: failed to open blob %s.%s rowid %d: %w", ErrIO, schema, table, rowID, err)
	}
	return blob, nil
}
