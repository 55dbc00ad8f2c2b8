package store

import (
	"context"
	"slices"
	"sync"
)

type MemoryBackend struct {
	mux  sync.RWMutex
	data map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: map[string][]byte{},
	}
}

func (s *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return slices.Clone(s.data[key]), nil
}

func (s *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.data[key] = slices.Clone(data)
	return nil
}

func (s *MemoryBackend) Close() error {
	return nil
}
