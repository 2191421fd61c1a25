package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows order listings. Zero values mean "any".
type ListFilter struct {
	Status      string
	TableNumber int
	From        time.Time
	To          time.Time
}

// OrderRepo persists orders. Get and FindOpenByTable return (nil, nil) when
// nothing matches. Save is conditional on Version and bumps it, returning
// ErrConcurrentUpdate when the stored version moved on.
type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	FindOpenByTable(ctx context.Context, tableNumber int) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
	OpenTableNumbers(ctx context.Context) ([]int, error)
}
