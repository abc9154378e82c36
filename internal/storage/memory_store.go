package storage

import (
	"sort"
	"sync"

	"github.com/cicd-lab/vercel-render/internal/domain"
)

// memoryStore keeps items in a map; contents are lost on restart.
type memoryStore struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[int64]domain.Item)}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) List() ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) Get(id int64) (domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, ErrNotFound
	}
	return item, nil
}

func (m *memoryStore) Create(req domain.ItemCreateRequest) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item := domain.Item{ID: m.nextID, Name: req.Name, Status: req.Status}
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryStore) Update(id int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, ErrNotFound
	}
	item = req.Apply(item)
	m.items[id] = item
	return item, nil
}

func (m *memoryStore) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}
