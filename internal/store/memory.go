package store

import (
	"context"
	"sync"
)

// Memory is the in-process backend used for tests and throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(raw))
	copy(copied, raw)
	return copied, true, nil
}

func (m *Memory) Save(_ context.Context, key string, raw []byte) error {
	copied := make([]byte, len(raw))
	copy(copied, raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = copied
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}
