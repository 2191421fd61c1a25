package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, table_number, items, total, status, open, placed_at, customer_name,
	customer_phone, completed_at, tax_rate_at_completion, version, created_at, updated_at`

type OrderRepo struct {
	pool Querier
}

func NewOrderRepo(pool Querier) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("cannot encode order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.TableNumber, items, o.Total, o.Status, o.Open, o.Timestamp, o.CustomerName,
		o.CustomerPhone, o.CompletedAt, o.TaxRateAtCompletion, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("table %d already has an open order: %w", o.TableNumber, order.ErrConcurrentUpdate)
		}
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) FindOpenByTable(ctx context.Context, tableNumber int) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE table_number = $1 AND open
		ORDER BY placed_at DESC LIMIT 1`, tableNumber)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find open order for table %d: %w", tableNumber, err)
	}
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.TableNumber != 0 {
		add("table_number = $%d", filter.TableNumber)
	}
	if !filter.From.IsZero() {
		add("placed_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("placed_at < $%d", filter.To)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY placed_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer rows.Close()

	result := []*order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("cannot decode order: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	return result, nil
}

func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("cannot encode order items: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET
			table_number = $3, items = $4, total = $5, status = $6, open = $7, placed_at = $8,
			customer_name = $9, customer_phone = $10, completed_at = $11,
			tax_rate_at_completion = $12, updated_at = $13, version = version + 1
		WHERE id = $1 AND version = $2`,
		o.ID, o.Version, o.TableNumber, items, o.Total, o.Status, o.Open, o.Timestamp,
		o.CustomerName, o.CustomerPhone, o.CompletedAt, o.TaxRateAtCompletion, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("table %d already has an open order: %w", o.TableNumber, order.ErrConcurrentUpdate)
		}
		return fmt.Errorf("cannot update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrConcurrentUpdate
	}

	o.Version++
	return nil
}

func (r *OrderRepo) OpenTableNumbers(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT table_number FROM orders WHERE open ORDER BY table_number`)
	if err != nil {
		return nil, fmt.Errorf("cannot list open tables: %w", err)
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("cannot decode open tables: %w", err)
	}
	return numbers, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o     order.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.TableNumber, &items, &o.Total, &o.Status, &o.Open, &o.Timestamp, &o.CustomerName,
		&o.CustomerPhone, &o.CompletedAt, &o.TaxRateAtCompletion, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("cannot decode order items: %w", err)
	}
	if o.Items == nil {
		o.Items = []order.Item{}
	}
	return &o, nil
}
