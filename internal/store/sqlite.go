// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"nickandperla.net/itemscript/internal/value"
)

// Current schema version
const SchemaVersion = "1"

// SQLite keeps variables in a SQLite database file. Each row holds the
// value's kind next to its text so it reads back with the same type.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens, creating if needed, the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		return err
	}

	version, err := s.metadata("schema_version")
	if err != nil {
		return err
	}
	switch version {
	case "":
		// seq keeps the order in which names were first stored.
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS variables (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				kind TEXT NOT NULL,
				value TEXT NOT NULL
			);
		`); err != nil {
			return err
		}
		return s.setMetadata("schema_version", SchemaVersion)
	case SchemaVersion:
		return nil
	}
	return fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
}

// Version returns the schema version recorded in the database.
func (s *SQLite) Version() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata("schema_version")
}

func (s *SQLite) Get(name string) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kind, text string
	err := s.db.QueryRow("SELECT kind, value FROM variables WHERE name = ?", name).Scan(&kind, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value.Decode(kind, text)
}

func (s *SQLite) Put(name string, v value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return put(s.db, name, v)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func put(db execer, name string, v value.Value) error {
	v = value.Normalize(v)
	_, err := db.Exec(`
		INSERT INTO variables (name, kind, value) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, value = excluded.value
	`, name, v.Kind().String(), v.String())
	return err
}

func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM variables WHERE name = ?", name)
	return err
}

func (s *SQLite) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM variables ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Replace swaps the stored variables for vars in one transaction.
func (s *SQLite) Replace(vars []Variable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM variables"); err != nil {
		return err
	}
	for _, v := range vars {
		if err := put(tx, v.Name, v.Value); err != nil {
			return fmt.Errorf("storing '%s': %w", v.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// metadata and setMetadata expect the caller to hold the lock, or to be
// opening the store.
func (s *SQLite) metadata(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *SQLite) setMetadata(key, v string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, v)
	return err
}
