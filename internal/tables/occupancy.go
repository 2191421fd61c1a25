package tables

import (
	"context"
	"fmt"

	"github.com/appetiteclub/roms/pkg/enums/tablestatus"
)

// OpenOrders reports the table numbers that currently hold an open order.
type OpenOrders interface {
	OpenTableNumbers(ctx context.Context) ([]int, error)
}

// DisplayStatus derives what a table shows on the floor plan. An explicit
// occupied or reserved status wins; otherwise an open order makes the table
// occupied.
func DisplayStatus(stored string, hasOpenOrder bool) string {
	switch stored {
	case tablestatus.Statuses.Occupied.Code(), tablestatus.Statuses.Reserved.Code():
		return stored
	}
	if hasOpenOrder {
		return tablestatus.Statuses.Occupied.Code()
	}
	return tablestatus.Statuses.Available.Code()
}

func occupiedNumbers(ctx context.Context, src OpenOrders) (map[int]bool, error) {
	occupied := make(map[int]bool)
	if src == nil {
		return occupied, nil
	}
	numbers, err := src.OpenTableNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load open orders: %w", err)
	}
	for _, n := range numbers {
		occupied[n] = true
	}
	return occupied, nil
}

func viewsOf(tables []*Table, occupied map[int]bool) []View {
	views := make([]View, 0, len(tables))
	for _, t := range tables {
		views = append(views, View{Table: t, DisplayStatus: DisplayStatus(t.Status, occupied[t.Number])})
	}
	return views
}
