package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (m *MemoryStore) InsertOne(_ context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	stored, err := withID(doc, id)
	if err != nil {
		return "", writeFailed(err, "memory insert %s", collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], stored)
	return id, nil
}

func (m *MemoryStore) ListDocuments(_ context.Context, collection string, limit int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	n := capacity(limit, len(docs))
	result := make([]Document, 0, n)
	for _, d := range docs[:n] {
		cp, err := deepCopy(d)
		if err != nil {
			return nil, corrupt(err, "memory list %s", collection)
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *MemoryStore) ListCollections(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := []string{}
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }
