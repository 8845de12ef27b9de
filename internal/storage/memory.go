package storage

import (
	"sync"
)

// MemoryStore is an in-process BlobStore. GetErr and PutErr, when set, are
// returned instead of touching the map.
type MemoryStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	puts   int
	GetErr error
	PutErr error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob for key.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key.
func (m *MemoryStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	if err := validKey(key); err != nil {
		return err
	}
	m.blobs[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

// Puts reports how many successful writes the store has seen.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
