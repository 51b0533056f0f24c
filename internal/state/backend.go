package state

import (
	"context"
	"sync"
)

// Backend is a minimal key-value store holding serialized documents.
type Backend interface {
	// Get returns the value stored under key. The boolean is false when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Locker is implemented by backends that can exclude other processes from
// the storage for the duration of a read-modify-write cycle.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

// Copier is implemented by backends that can duplicate a stored value
// without routing it through memory, such as copying one file to another.
type Copier interface {
	Copy(ctx context.Context, srcKey, dstKey string) error
}

// MemoryBackend keeps values in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.mu.Lock()
	m.values[key] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
