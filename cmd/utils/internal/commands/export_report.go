package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/appetiteclub/roms/internal/app"
	"github.com/appetiteclub/roms/internal/billing"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/internal/settings"
	"github.com/aquamarinepk/aqm"
)

const dateLayout = "2006-01-02"

// ExportReport writes the orders CSV report to report.out (stdout when
// unset). report.from and report.to bound the order timestamps as
// YYYY-MM-DD, with report.to inclusive.
func ExportReport(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	filter, err := reportFilter(config)
	if err != nil {
		return err
	}

	storage, err := app.OpenStorage(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Stop(context.Background())

	store := settings.NewStore(storage.Settings, nil, settings.DefaultGSTRate, logger)
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	freeze, _ := config.GetString("billing.freeze_rate_on_completion")
	svc := billing.NewService(storage.Orders, store, billing.RatePolicy{FreezeOnCompletion: freeze == "true"}, logger)

	report, err := svc.Report(ctx, filter)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	var out io.Writer = os.Stdout
	if path, _ := config.GetString("report.out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if err := billing.WriteCSV(out, report.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	logger.Info("Report exported", "orders", report.Totals.Orders, "grand_total", billing.Money(report.Totals.GrandTotal))
	return nil
}

func reportFilter(config *aqm.Config) (order.ListFilter, error) {
	var filter order.ListFilter
	filter.Status, _ = config.GetString("report.status")

	if raw, _ := config.GetString("report.from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid report.from %q: %w", raw, err)
		}
		filter.From = from
	}
	if raw, _ := config.GetString("report.to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid report.to %q: %w", raw, err)
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return filter, fmt.Errorf("report.from must not be after report.to")
	}
	return filter, nil
}
