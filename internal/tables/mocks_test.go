package tables

import (
	"context"
	"sync"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/google/uuid"
)

type MockTableRepo struct {
	mu      sync.Mutex
	tables  map[uuid.UUID]*Table
	GetFunc func(ctx context.Context, id uuid.UUID) (*Table, error)
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{tables: make(map[uuid.UUID]*Table)}
}

func (m *MockTableRepo) numberTaken(number int, self uuid.UUID) bool {
	for _, t := range m.tables {
		if t.Number == number && t.ID != self {
			return true
		}
	}
	return false
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numberTaken(table.Number, table.ID) {
		return ErrDuplicateNumber
	}
	c := *table
	m.tables[table.ID] = &c
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, number int) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.Number == number {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table.ID]; !ok {
		return ErrNotFound
	}
	if m.numberTaken(table.Number, table.ID) {
		return ErrDuplicateNumber
	}
	c := *table
	m.tables[table.ID] = &c
	return nil
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[id]; !ok {
		return ErrNotFound
	}
	delete(m.tables, id)
	return nil
}

func (m *MockTableRepo) add(number int, status string) *Table {
	t := NewTable()
	t.Number = number
	t.Status = status
	t.BeforeCreate()
	m.tables[t.ID] = t
	return t
}

type staticOpenOrders []int

func (s staticOpenOrders) OpenTableNumbers(ctx context.Context) ([]int, error) {
	return s, nil
}

type MockNotifier struct {
	signals []event.Signal
}

func (n *MockNotifier) Notify(ctx context.Context, signal event.Signal) {
	n.signals = append(n.signals, signal)
}
