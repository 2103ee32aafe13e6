// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"slices"
	"sync"

	"nickandperla.net/itemscript/internal/value"
)

// Memory keeps variables for the life of the process.
type Memory struct {
	mu    sync.RWMutex
	names []string
	data  map[string]value.Value
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]value.Value)}
}

func (m *Memory) Get(name string) (value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[name], nil
}

func (m *Memory) Put(name string, v value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(name, value.Normalize(v))
	return nil
}

func (m *Memory) put(name string, v value.Value) {
	if _, ok := m.data[name]; !ok {
		m.names = append(m.names, name)
	}
	m.data[name] = v
}

func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return nil
	}
	delete(m.data, name)
	m.names = slices.DeleteFunc(m.names, func(n string) bool { return n == name })
	return nil
}

func (m *Memory) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.names), nil
}

func (m *Memory) Replace(vars []Variable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = nil
	m.data = make(map[string]value.Value, len(vars))
	for _, v := range vars {
		m.put(v.Name, value.Normalize(v.Value))
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
