// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package store persists experiment variables between sessions.
package store

import "nickandperla.net/itemscript/internal/value"

// Variable is one stored name and value.
type Variable struct {
	Name  string
	Value value.Value
}

// Store holds typed variables in the order they were first stored.
type Store interface {
	// Get retrieves a value by name. Returns nil if not found.
	Get(name string) (value.Value, error)
	// Put stores a value by name, overwriting if it exists.
	Put(name string, v value.Value) error
	// Delete removes a value by name.
	Delete(name string) error
	// Names returns the stored names in order.
	Names() ([]string, error)
	// Replace atomically swaps the whole contents for vars, in order.
	Replace(vars []Variable) error
	// Close releases resources.
	Close() error
}
