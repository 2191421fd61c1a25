package menu

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Category  string
	Available *bool
}

// MenuItemRepo persists menu items. Get returns (nil, nil) for unknown ids
// and Delete returns ErrNotFound.
type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	List(ctx context.Context, filter ListFilter) ([]*MenuItem, error)
	Save(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
