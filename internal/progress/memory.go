package progress

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (m *MemoryBackend) Put(_ context.Context, quizID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[quizID] = slices.Clone(data)
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, quizID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.blobs[quizID]), nil
}

func (m *MemoryBackend) All(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.blobs), nil
}

func (m *MemoryBackend) Delete(_ context.Context, quizID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, quizID)
	return nil
}
