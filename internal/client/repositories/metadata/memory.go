package metadata

import (
	"bytes"
	"context"
	"sync"
)

// MemoryRepository is a process-local store. Nothing survives a restart, so
// it suits tests and the "memory" store driver for throwaway sessions.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = bytes.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) CompareAndDelete(_ context.Context, key string, expected []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok || !bytes.Equal(v, expected) {
		return false, nil
	}
	delete(r.data, key)
	return true, nil
}

func (r *MemoryRepository) SetIfAbsent(_ context.Context, key string, value []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.data[key]; ok {
		return bytes.Clone(v), nil
	}
	r.data[key] = bytes.Clone(value)
	return bytes.Clone(value), nil
}
