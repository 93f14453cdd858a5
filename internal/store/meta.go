package store

import "fmt"

// Per-index metadata is a portable integer key-value table: TEXT keys,
// INTEGER values. Integer-only storage sidesteps endianness entirely.

// CreateMetaTable creates the metadata key-value table.
func (d *DB) CreateMetaTable(schema, table string) error {
	query := fmt.Sprintf(
		"CREATE TABLE %s.%s (key TEXT PRIMARY KEY, value INTEGER NOT NULL)", schema, table)
	return d.Exec(query)
}

// CreateShadowTable creates the fixed-width block table.
func (d *DB) CreateShadowTable(schema, table string) error {
	query := fmt.Sprintf(
		"CREATE TABLE %s.%s (id INTEGER PRIMARY KEY, data BLOB NOT NULL)", schema, table)
	return d.Exec(query)
}

// DropTable drops the table if it exists.
func (d *DB) DropTable(schema, table string) error {
	return d.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", schema, table))
}

// ClearTable deletes every row, preserving the table itself.
func (d *DB) ClearTable(schema, table string) error {
	return d.Exec(fmt.Sprintf("DELETE FROM %s.%s", schema, table))
}

// MetaSet stores one integer configuration value.
func (d *DB) MetaSet(schema, table, key string, value int64) error {
	query := fmt.Sprintf(
		"INSERT INTO %s.%s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		schema, table)
	return d.Exec(query, key, value)
}

// MetaGet reads one configuration value; ok is false when the key is absent.
func (d *DB) MetaGet(schema, table, key string) (int64, bool, error) {
	query := fmt.Sprintf("SELECT value FROM %s.%s WHERE key = ?", schema, table)
	return d.SelectInt64(query, key)
}
