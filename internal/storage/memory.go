package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps objects in process memory. It is used by tests and by
// STORAGE_BACKEND=memory for local runs; contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{Data: clone(obj.Data), Version: obj.Version}, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, cond Precondition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !cond.Unconditional() {
		current, exists := m.objects[key]
		switch {
		case cond.Version() == "" && exists:
			return "", ErrConflict
		case cond.Version() != "" && (!exists || current.Version != cond.Version()):
			return "", ErrConflict
		}
	}

	version := uuid.NewString()
	m.objects[key] = Object{Data: clone(data), Version: version}
	return version, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ Store = (*MemoryStore)(nil)
