package order

import (
	"context"
	"sort"
	"sync"

	"github.com/appetiteclub/roms/internal/menu"
	"github.com/appetiteclub/roms/pkg/event"
	"github.com/google/uuid"
)

// MockOrderRepo is an in-memory OrderRepo that stores copies so tests see
// only committed state.
type MockOrderRepo struct {
	mu                  sync.RWMutex
	orders              map[uuid.UUID]*Order
	CreateFunc          func(ctx context.Context, order *Order) error
	GetFunc             func(ctx context.Context, id uuid.UUID) (*Order, error)
	FindOpenByTableFunc func(ctx context.Context, tableNumber int) (*Order, error)
	SaveFunc            func(ctx context.Context, order *Order) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (m *MockOrderRepo) FindOpenByTable(ctx context.Context, tableNumber int) (*Order, error) {
	if m.FindOpenByTableFunc != nil {
		return m.FindOpenByTableFunc(ctx, tableNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.TableNumber == tableNumber && o.IsOpen() {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepo) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.TableNumber != 0 && o.TableNumber != filter.TableNumber {
			continue
		}
		if !filter.From.IsZero() && o.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !o.Timestamp.Before(filter.To) {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return ErrConcurrentUpdate
	}
	order.Version++
	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *MockOrderRepo) OpenTableNumbers(ctx context.Context) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var numbers []int
	for _, o := range m.orders {
		if o.IsOpen() {
			numbers = append(numbers, o.TableNumber)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

func (m *MockOrderRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	return &c
}

// MockCatalog resolves menu items from a map.
type MockCatalog struct {
	items map[uuid.UUID]*menu.MenuItem
}

func NewMockCatalog(items ...*menu.MenuItem) *MockCatalog {
	c := &MockCatalog{items: make(map[uuid.UUID]*menu.MenuItem)}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func (c *MockCatalog) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	return c.items[id], nil
}

// MockNotifier records every signal.
type MockNotifier struct {
	mu      sync.Mutex
	signals []event.Signal
}

func (n *MockNotifier) Notify(ctx context.Context, signal event.Signal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signals = append(n.signals, signal)
}

func (n *MockNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var names []string
	for _, s := range n.signals {
		names = append(names, s.Name)
	}
	return names
}

type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }
