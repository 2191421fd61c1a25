package menu

import (
	"context"
	"strings"
	"sync"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/google/uuid"
)

// MockMenuItemRepo is an in-memory MenuItemRepo.
type MockMenuItemRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*MenuItem
	CreateFunc func(ctx context.Context, item *MenuItem) error
	ListFunc   func(ctx context.Context, filter ListFilter) ([]*MenuItem, error)
}

func NewMockMenuItemRepo() *MockMenuItemRepo {
	return &MockMenuItemRepo{items: make(map[uuid.UUID]*MenuItem)}
}

func (m *MockMenuItemRepo) Create(ctx context.Context, item *MenuItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *item
	m.items[item.ID] = &c
	return nil
}

func (m *MockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c := *item
	return &c, nil
}

func (m *MockMenuItemRepo) List(ctx context.Context, filter ListFilter) ([]*MenuItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*MenuItem, 0, len(m.items))
	for _, item := range m.items {
		if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
			continue
		}
		if filter.Available != nil && item.Available != *filter.Available {
			continue
		}
		c := *item
		result = append(result, &c)
	}
	return result, nil
}

func (m *MockMenuItemRepo) Save(ctx context.Context, item *MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}
	c := *item
	m.items[item.ID] = &c
	return nil
}

func (m *MockMenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockMenuItemRepo) add(item *MenuItem) *MenuItem {
	item.BeforeCreate()
	m.items[item.ID] = item
	return item
}

type MockNotifier struct {
	mu      sync.Mutex
	signals []event.Signal
}

func (n *MockNotifier) Notify(ctx context.Context, signal event.Signal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signals = append(n.signals, signal)
}

func (n *MockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.signals)
}
