package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/roms/cmd/utils/internal/seeding"
	"github.com/appetiteclub/roms/internal/app"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/aquamarinepk/aqm"
)

// Seed applies the default menu and tables. With seeding.demo=true it also
// places a few demo orders.
func Seed(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting seeding process...")

	storage, err := app.OpenStorage(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Stop(context.Background())

	if err := app.ApplySeeds(ctx, storage, logger); err != nil {
		return fmt.Errorf("apply seeds: %w", err)
	}

	if demo, _ := config.GetString("seeding.demo"); demo != "true" {
		return nil
	}

	orders := order.NewService(order.ServiceDeps{
		Repo:    storage.Orders,
		Catalog: storage.Menu,
	}, logger)

	if err := seeding.SeedDemoOrders(ctx, orders, storage.Menu, logger); err != nil {
		return fmt.Errorf("seed demo orders: %w", err)
	}
	return nil
}
