package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore 进程内文档存储，语义与 Store 一致（整篇覆盖），用于测试与本地调试
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]map[string]any)}
}

func (m *MemoryStore) SetDocument(ctx context.Context, collection, docID string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.docs[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.docs[collection] = col
	}
	col[docID] = copyFields(fields)
	return nil
}

func (m *MemoryStore) GetDocument(ctx context.Context, collection, docID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][docID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyFields(doc), nil
}

func (m *MemoryStore) ListDocumentIDs(ctx context.Context, collection string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
