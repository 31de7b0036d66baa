package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps blobs in a process-local map.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// ReadBlob implements ports.BlobStore.
func (m *MemoryStore) ReadBlob(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}

	return slices.Clone(data), true, nil
}

// WriteBlob implements ports.BlobStore.
func (m *MemoryStore) WriteBlob(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = slices.Clone(data)

	return nil
}

// Close implements Backend. It is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// Driver implements Backend.
func (m *MemoryStore) Driver() string {
	return DriverMemory
}
