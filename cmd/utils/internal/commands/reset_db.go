package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/roms/internal/app"
	"github.com/aquamarinepk/aqm"
)

// ResetDB removes every order, menu item, table, setting and seed record
// from the configured backend. USE WITH CAUTION.
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Infof("DANGER: this will remove ALL data from the %s backend", config.GetStringOrDef("db.backend", app.BackendMongo))
	logger.Infof("This action cannot be undone")

	storage, err := app.OpenStorage(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Stop(context.Background())

	if err := storage.Reset(ctx); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	logger.Info("All data has been removed", "backend", storage.Backend)
	return nil
}
