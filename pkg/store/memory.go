package store

import (
	"context"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// MemoryStore は SQLite が使えない環境向けのプロセス内ストアです。
// 再起動すると内容は失われます。
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    map[Collection]int64
	creations map[int64]domain.Creation
	inspo     map[int64]domain.InspoImage
	settings  map[string]string
}

// NewMemory は空の MemoryStore を作ります。
func NewMemory() *MemoryStore {
	return &MemoryStore{
		nextID:    map[Collection]int64{},
		creations: map[int64]domain.Creation{},
		inspo:     map[int64]domain.InspoImage{},
		settings:  map[string]string{},
	}
}

// Durable は常に false です。
func (m *MemoryStore) Durable() bool { return false }

func (m *MemoryStore) allocate(c Collection) int64 {
	m.nextID[c]++
	return m.nextID[c]
}

func (m *MemoryStore) PutCreation(_ context.Context, c domain.Creation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.allocate(CollectionCreations)
	m.creations[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) ListCreations(_ context.Context) ([]domain.Creation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Creation, 0, len(m.creations))
	for _, c := range m.creations {
		out = append(out, c)
	}
	SortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) DeleteCreation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creations, id)
	return nil
}

func (m *MemoryStore) PutInspo(_ context.Context, img domain.InspoImage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img.ID = m.allocate(CollectionInspo)
	m.inspo[img.ID] = img
	return img.ID, nil
}

func (m *MemoryStore) ListInspo(_ context.Context) ([]domain.InspoImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.InspoImage, 0, len(m.inspo))
	for id := int64(1); id <= m.nextID[CollectionInspo]; id++ {
		if img, ok := m.inspo[id]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteInspo(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inspo, id)
	return nil
}

func (m *MemoryStore) Setting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}
