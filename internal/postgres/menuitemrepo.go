package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/roms/internal/menu"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const menuColumns = `id, name, description, price, category, image, available, vegetarian, created_at, updated_at`

type MenuItemRepo struct {
	pool Querier
}

func NewMenuItemRepo(pool Querier) *MenuItemRepo {
	return &MenuItemRepo{pool: pool}
}

func (r *MenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO menu_items (`+menuColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.Image,
		item.Available, item.Vegetarian, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("cannot create menu item: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)
	item, err := scanMenuItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}
	return item, nil
}

func (r *MenuItemRepo) List(ctx context.Context, filter menu.ListFilter) ([]*menu.MenuItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conds = append(conds, fmt.Sprintf("available = $%d", len(args)))
	}

	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY category, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer rows.Close()

	result := []*menu.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("cannot decode menu item: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	return result, nil
}

func (r *MenuItemRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE menu_items SET
			name = $2, description = $3, price = $4, category = $5, image = $6,
			available = $7, vegetarian = $8, updated_at = $9
		WHERE id = $1`,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.Image,
		item.Available, item.Vegetarian, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("cannot update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func (r *MenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cannot delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.Row) (*menu.MenuItem, error) {
	var item menu.MenuItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.Category, &item.Image,
		&item.Available, &item.Vegetarian, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
