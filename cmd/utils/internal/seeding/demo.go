package seeding

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/menu"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/pkg/enums/itemstatus"
	"github.com/appetiteclub/roms/pkg/enums/orderstatus"
	"github.com/aquamarinepk/aqm"
)

type demoOrder struct {
	table    int
	customer string
	items    map[string]int
	status   string
	// served marks item indexes moved to prepared before the order status.
	served []int
}

var demoOrders = []demoOrder{
	{
		table:    1,
		customer: "Priya",
		items:    map[string]int{"Caesar Salad": 2, "Tiramisu": 2},
		status:   orderstatus.Statuses.Preparing.Code(),
		served:   []int{0},
	},
	{
		table:    2,
		customer: "Marco",
		items:    map[string]int{"Margherita Pizza": 1, "Cheeseburger": 1},
		status:   orderstatus.Statuses.Confirmed.Code(),
	},
	{
		table:    3,
		customer: "Guest",
		items:    map[string]int{"Margherita Pizza": 2},
		status:   orderstatus.Statuses.Completed.Code(),
	},
}

// SeedDemoOrders places a handful of orders through the order service so
// every invariant holds for the demo data. Tables that already have an open
// order are skipped.
func SeedDemoOrders(ctx context.Context, orders *order.Service, catalog menu.MenuItemRepo, logger aqm.Logger) error {
	items, err := catalog.List(ctx, menu.ListFilter{})
	if err != nil {
		return fmt.Errorf("cannot list menu: %w", err)
	}
	byName := make(map[string]*menu.MenuItem, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}

	for _, d := range demoOrders {
		open, err := orders.List(ctx, order.ListFilter{TableNumber: d.table})
		if err != nil {
			return fmt.Errorf("cannot check table %d: %w", d.table, err)
		}
		if hasOpen(open) {
			logger.Info("Table already has an open order, skipping demo", "table_number", d.table)
			continue
		}

		req := order.PlaceOrderRequest{TableNumber: d.table, CustomerName: d.customer}
		for name, qty := range d.items {
			item, ok := byName[name]
			if !ok {
				return fmt.Errorf("menu item %q not found, run seed first", name)
			}
			id := item.ID
			req.Items = append(req.Items, order.PlaceItemRequest{MenuItemID: &id, Quantity: qty})
		}

		placed, _, err := orders.Place(ctx, req)
		if err != nil {
			return fmt.Errorf("cannot place demo order for table %d: %w", d.table, err)
		}

		for _, idx := range d.served {
			if _, err := orders.UpdateItemStatus(ctx, placed.ID, idx, order.ItemStatusUpdateRequest{
				Status: itemstatus.Statuses.Prepared.Code(),
			}); err != nil {
				return fmt.Errorf("cannot mark demo item served: %w", err)
			}
		}

		if err := advance(ctx, orders, placed, d.status); err != nil {
			return err
		}

		logger.Info("Demo order placed", "table_number", d.table, "order_id", placed.ID.String(), "status", d.status)
	}
	return nil
}

func hasOpen(orders []*order.Order) bool {
	for _, o := range orders {
		if o.IsOpen() {
			return true
		}
	}
	return false
}

// advance walks the strict lifecycle up to target.
func advance(ctx context.Context, orders *order.Service, o *order.Order, target string) error {
	current := o.Status
	for current != target {
		next, ok := order.NextStatus(current)
		if !ok {
			return errors.New("cannot reach demo status " + target)
		}
		updated, err := orders.UpdateStatus(ctx, o.ID, next)
		if err != nil {
			return fmt.Errorf("cannot move demo order to %s: %w", next, err)
		}
		current = updated.Status
	}
	return nil
}
