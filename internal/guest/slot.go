// Package guest persists the unauthenticated cart and wishlist in a local
// key-value slot.
package guest

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidKey is returned when a slot key cannot be stored by a backend.
var ErrInvalidKey = errors.New("invalid slot key")

// Slot is a client-local key-value store holding one serialized blob per key.
// Implementations may keep data in memory, on disk, or in a shared cache.
type Slot interface {
	// Get returns the stored bytes, whether the key was present, and an
	// error if the lookup itself failed.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MemorySlot keeps values in process memory. Safe for concurrent use.
type MemorySlot struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemorySlot) Set(_ context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemorySlot) Close() error { return nil }

// Compile-time interface checks.
var (
	_ Slot = (*MemorySlot)(nil)
	_ Slot = (*FileSlot)(nil)
	_ Slot = (*SQLiteSlot)(nil)
	_ Slot = (*RedisSlot)(nil)
)
