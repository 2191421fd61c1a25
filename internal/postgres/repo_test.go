package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/internal/settings"
	"github.com/appetiteclub/roms/internal/tables"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	tag  pgconn.CommandTag
	err  error
	sql  []string
	args [][]any
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return f.tag, f.err
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not supported")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func uniqueErr() error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: "orders_one_open_per_table"}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique", err: uniqueErr(), want: true},
		{name: "wrapped", err: fmt.Errorf("exec: %w", uniqueErr()), want: true},
		{name: "foreignKey", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "plain", err: errors.New("connection refused"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func testOrder(version int64) *order.Order {
	o := order.NewOrder(4)
	o.Items = []order.Item{{Name: "Soup", Price: 5, Quantity: 1, Status: "pending"}}
	o.Total = 5
	o.Timestamp = time.Now()
	o.Version = version
	return o
}

func TestOrderRepoSave(t *testing.T) {
	tests := []struct {
		name         string
		tag          string
		err          error
		wantErr      bool
		wantConflict bool
		wantVersion  int64
	}{
		{name: "versionMatches", tag: "UPDATE 1", wantVersion: 4},
		{name: "versionMoved", tag: "UPDATE 0", wantErr: true, wantConflict: true, wantVersion: 3},
		{name: "secondOpenOrder", err: uniqueErr(), wantErr: true, wantConflict: true, wantVersion: 3},
		{name: "driverFailure", err: errors.New("conn reset"), wantErr: true, wantVersion: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{tag: pgconn.NewCommandTag(tt.tag), err: tt.err}
			repo := NewOrderRepo(q)
			o := testOrder(3)

			err := repo.Save(context.Background(), o)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantConflict, errors.Is(err, order.ErrConcurrentUpdate))
			assert.Equal(t, tt.wantVersion, o.Version)

			require.Len(t, q.sql, 1)
			assert.Contains(t, q.sql[0], "WHERE id = $1 AND version = $2")
			assert.Contains(t, q.sql[0], "version = version + 1")
			assert.Equal(t, int64(3), q.args[0][1], "guard must use the loaded version")
		})
	}
}

func TestOrderRepoCreateSecondOpenOrder(t *testing.T) {
	repo := NewOrderRepo(&fakeQuerier{err: uniqueErr()})

	err := repo.Create(context.Background(), testOrder(1))

	assert.ErrorIs(t, err, order.ErrConcurrentUpdate)
}

func TestSettingsRepoSave(t *testing.T) {
	t.Run("concurrentFirstInsert", func(t *testing.T) {
		q := &fakeQuerier{err: uniqueErr()}
		err := NewSettingsRepo(q).Save(context.Background(), settings.NewSettings(0.05))

		assert.ErrorIs(t, err, settings.ErrConcurrentUpdate)
		assert.Contains(t, q.sql[0], "INSERT INTO settings")
	})

	t.Run("versionMoved", func(t *testing.T) {
		q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
		s := &settings.Settings{ID: settings.GlobalID, GSTRate: 0.1, Version: 3}

		err := NewSettingsRepo(q).Save(context.Background(), s)

		assert.ErrorIs(t, err, settings.ErrConcurrentUpdate)
		args := q.args[0]
		assert.Equal(t, int64(2), args[len(args)-1])
	})

	t.Run("versionMatches", func(t *testing.T) {
		q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
		s := &settings.Settings{ID: settings.GlobalID, GSTRate: 0.1, Version: 3}

		assert.NoError(t, NewSettingsRepo(q).Save(context.Background(), s))
	})
}

func TestTableRepoCreateDuplicateNumber(t *testing.T) {
	table := tables.NewTable()
	table.Number = 7
	table.BeforeCreate()

	err := NewTableRepo(&fakeQuerier{err: uniqueErr()}).Create(context.Background(), table)

	assert.ErrorIs(t, err, tables.ErrDuplicateNumber)
}
