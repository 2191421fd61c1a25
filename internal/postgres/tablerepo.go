package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/tables"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, number, capacity, status, created_at, updated_at`

type TableRepo struct {
	pool Querier
}

func NewTableRepo(pool Querier) *TableRepo {
	return &TableRepo{pool: pool}
}

func (r *TableRepo) Create(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dining_tables (`+tableColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		table.ID, table.Number, table.Capacity, table.Status, table.CreatedAt, table.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return tables.ErrDuplicateNumber
		}
		return fmt.Errorf("cannot create table: %w", err)
	}
	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	return r.findOne(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1`, id)
}

func (r *TableRepo) GetByNumber(ctx context.Context, number int) (*tables.Table, error) {
	return r.findOne(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE number = $1`, number)
}

func (r *TableRepo) findOne(ctx context.Context, query string, arg interface{}) (*tables.Table, error) {
	table, err := scanTable(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return table, nil
}

func (r *TableRepo) List(ctx context.Context) ([]*tables.Table, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tableColumns+` FROM dining_tables ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer rows.Close()

	result := []*tables.Table{}
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("cannot decode table: %w", err)
		}
		result = append(result, table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	return result, nil
}

func (r *TableRepo) Save(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE dining_tables SET number = $2, capacity = $3, status = $4, updated_at = $5
		WHERE id = $1`,
		table.ID, table.Number, table.Capacity, table.Status, table.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return tables.ErrDuplicateNumber
		}
		return fmt.Errorf("cannot update table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tables.ErrNotFound
	}
	return nil
}

func (r *TableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dining_tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cannot delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tables.ErrNotFound
	}
	return nil
}

func scanTable(row pgx.Row) (*tables.Table, error) {
	var t tables.Table
	if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
