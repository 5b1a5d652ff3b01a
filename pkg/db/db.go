// Package db provides the SQLite-backed durable key-value store used
// by the TTL caches for best-effort persistence. The store must never
// be assumed fast or available; callers treat every operation as
// best-effort.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultDBName = "hoverpeek.db"

type DB struct {
	*sql.DB
	path string
}

// openDB opens a SQLite database at the given path.
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return sqlDB, nil
}

// Open opens or creates the cache database at path, initializing the
// schema on first use.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultDBName
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	db := &DB{DB: sqlDB, path: path}

	if err := db.ensureSchemaExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// ensureSchemaExists checks for the cache table and initializes the
// schema if it is missing.
func (db *DB) ensureSchemaExists() error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='cache_entries'").Scan(&tableName)

	if err == sql.ErrNoRows {
		return db.InitSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// InitSchema initializes the database schema.
func (db *DB) InitSchema() error {
	_, err := db.Exec(schema)
	return err
}

// Row is one persisted cache entry.
type Row struct {
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

// Get returns the row for (namespace, key), or found=false when
// absent.
func (db *DB) Get(namespace, key string) (Row, bool, error) {
	var row Row
	var createdAt int64
	err := db.QueryRow(
		"SELECT key, payload, created_at FROM cache_entries WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&row.Key, &row.Payload, &createdAt)
	if err == sql.ErrNoRows {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	row.CreatedAt = time.Unix(0, createdAt)
	return row, true, nil
}

// Set upserts a cache entry, replacing any previous payload for the
// same (namespace, key).
func (db *DB) Set(namespace, key string, payload []byte, createdAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO cache_entries (namespace, key, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key)
		DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		namespace, key, payload, createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Remove deletes one entry; deleting an absent key is not an error.
func (db *DB) Remove(namespace, key string) error {
	_, err := db.Exec("DELETE FROM cache_entries WHERE namespace = ? AND key = ?", namespace, key)
	if err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// List returns all rows in a namespace, oldest first.
func (db *DB) List(namespace string) ([]Row, error) {
	rows, err := db.Query(
		"SELECT key, payload, created_at FROM cache_entries WHERE namespace = ? ORDER BY created_at ASC",
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var createdAt int64
		if err := rows.Scan(&row.Key, &row.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		row.CreatedAt = time.Unix(0, createdAt)
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteNamespace drops every entry in a namespace.
func (db *DB) DeleteNamespace(namespace string) error {
	_, err := db.Exec("DELETE FROM cache_entries WHERE namespace = ?", namespace)
	if err != nil {
		return fmt.Errorf("failed to clear namespace: %w", err)
	}
	return nil
}

// DeleteOlderThan removes all entries in a namespace created before
// cutoff, returning how many were dropped. Used by the compaction pass
// after a failed sync.
func (db *DB) DeleteOlderThan(namespace string, cutoff time.Time) (int64, error) {
	res, err := db.Exec(
		"DELETE FROM cache_entries WHERE namespace = ? AND created_at < ?",
		namespace, cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to compact namespace: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
