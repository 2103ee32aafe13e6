// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package vars implements the ordered variable store owned by items and
// experiments.
package vars

import (
	"sync"

	"nickandperla.net/itemscript/internal/value"
)

// Store is a thread-safe mapping from variable name to value that
// remembers insertion order.
type Store struct {
	mu     sync.RWMutex
	names  []string
	values map[string]value.Value
}

// New creates a new empty store.
func New() *Store {
	return &Store{values: make(map[string]value.Value)}
}

// Get retrieves a value by name.
func (s *Store) Get(name string) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set stores a value by name, replacing any previous binding. A new name is
// appended to the iteration order; a replaced name keeps its position.
func (s *Store) Set(name string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value.Normalize(v)
}

// Delete removes a binding. Deleting an absent name is a no-op.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		return
	}
	delete(s.values, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
}

// Has returns true if the name is bound.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[name]
	return ok
}

// Names returns the bound names in insertion order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of bindings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Reset removes all bindings.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = nil
	s.values = make(map[string]value.Value)
}

// Range calls fn for each binding in insertion order until fn returns
// false. fn runs on a snapshot, so it may modify the store.
func (s *Store) Range(fn func(name string, v value.Value) bool) {
	s.mu.RLock()
	names := make([]string, len(s.names))
	copy(names, s.names)
	values := make([]value.Value, len(names))
	for i, n := range names {
		values[i] = s.values[n]
	}
	s.mu.RUnlock()

	for i, n := range names {
		if !fn(n, values[i]) {
			return
		}
	}
}

// Clone creates a copy of the store.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := New()
	clone.names = append(clone.names, s.names...)
	for k, v := range s.values {
		clone.values[k] = v
	}
	return clone
}
