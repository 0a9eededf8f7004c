// Package kvdb persists small key-value pairs, such as the last selected HMI
// mode, across supervisor restarts. It is backed by a local sqlite file.
package kvdb

import (
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	hmierrors "github.com/keybox9823/apollo/pkg/errors"
)

// DB is a string key-value store on top of a single sqlite table.
type DB struct {
	db *sql.DB
}

// Open creates or opens the store at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, hmierrors.New(hmierrors.ErrCodePersistence, "Open",
			"cannot open kv database "+path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, hmierrors.New(hmierrors.ErrCodePersistence, "Open",
			"cannot initialize kv schema", err)
	}
	return &DB{db: db}, nil
}

// Get returns the value for key, or "" when the key is absent.
func (d *DB) Get(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", hmierrors.New(hmierrors.ErrCodePersistence, "Get",
			"cannot read key "+key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (d *DB) Put(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return hmierrors.New(hmierrors.ErrCodePersistence, "Put",
			"cannot write key "+key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
