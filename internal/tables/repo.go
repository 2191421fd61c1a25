package tables

import (
	"context"

	"github.com/google/uuid"
)

// TableRepo persists tables. Get and GetByNumber return (nil, nil) when
// nothing matches. Create and Save return ErrDuplicateNumber when another
// table already holds the number.
type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number int) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}
