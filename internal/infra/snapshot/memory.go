// Package snapshot provides port.SnapshotStore adapters. Every value is a whole
// JSON document that is replaced on each write.
package snapshot

import (
	"context"
	"sync"
)

// Memory is a process-local SnapshotStore. Used for tests and local development.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.items[key]), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = clone(value)
	return nil
}

// Update holds the store lock for the whole read-modify-write.
func (m *Memory) Update(_ context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(clone(m.items[key]))
	if err != nil {
		return err
	}
	m.items[key] = clone(next)
	return nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
