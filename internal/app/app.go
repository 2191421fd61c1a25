package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/appetiteclub/roms/assets"
	"github.com/appetiteclub/roms/internal/billing"
	"github.com/appetiteclub/roms/internal/menu"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/internal/relay"
	"github.com/appetiteclub/roms/internal/settings"
	"github.com/appetiteclub/roms/internal/tables"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
	"golang.org/x/sync/errgroup"
)

const (
	AppName    = "roms"
	AppVersion = "0.1.0"
)

// App wires storage, the relay and every HTTP module into one service.
type App struct {
	config  *aqm.Config
	logger  aqm.Logger
	micro   *aqm.Micro
	storage *Storage
}

func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize connects storage and the broker and builds the micro service.
func (a *App) Initialize(ctx context.Context) error {
	storage, err := OpenStorage(ctx, a.config, a.logger)
	if err != nil {
		return err
	}
	a.storage = storage

	publisher, publisherHooks, err := OpenPublisher(ctx, a.config, a.logger)
	if err != nil {
		_ = storage.Stop(context.Background())
		return err
	}

	hub := relay.NewHub(a.logger)
	notifier := relay.New(hub, publisher, a.logger)

	defaultRate := settings.DefaultGSTRate
	if raw, ok := a.config.GetString("settings.gst.default"); ok && raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			defaultRate = v
		} else {
			a.logger.Info("ignoring invalid settings.gst.default", "value", raw)
		}
	}
	settingsStore := settings.NewStore(storage.Settings, notifier, defaultRate, a.logger)

	settingsFeed, subscribed, err := SubscribeSettings(a.config, settingsStore, a.logger)
	if err != nil {
		if publisherHooks.OnStop != nil {
			_ = publisherHooks.OnStop(context.Background())
		}
		_ = storage.Stop(context.Background())
		return err
	}
	settingsStore.SetRefreshInterval(settingsRefreshInterval(a.config, subscribed, a.logger))

	lenient, _ := a.config.GetString("orders.status.lenient")
	orderService := order.NewService(order.ServiceDeps{
		Repo:     storage.Orders,
		Catalog:  storage.Menu,
		Rates:    settingsStore,
		Notifier: notifier,
		Locks:    order.NewTableLocks(),
		Policy:   order.PolicyFromFlag(lenient == "true"),
	}, a.logger)
	a.logger.Info("Order status policy", "policy", orderService.Policy().String())

	freeze, _ := a.config.GetString("billing.freeze_rate_on_completion")
	billingService := billing.NewService(orderService, settingsStore, billing.RatePolicy{FreezeOnCompletion: freeze == "true"}, a.logger)

	handlers := []interface{}{
		order.NewHandler(orderService, a.config, a.logger),
		billing.NewHandler(billingService, a.logger),
		menu.NewHandler(storage.Menu, notifier, a.config, a.logger),
		tables.NewHandler(storage.Tables, storage.Orders, notifier, a.config, a.logger),
		settings.NewHandler(settingsStore, billingService, a.logger),
		relay.NewSSEHandler(hub, a.logger),
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: a.logger,
	})

	seedCtx, cancelSeeds := context.WithCancel(context.Background())

	lifecycles := []interface{}{
		aqm.LifecycleHooks{OnStop: storage.Stop},
		publisherHooks,
		notifier,
		settingsStore,
		settingsFeed,
	}

	if seedingEnabled := a.config.GetStringOrDef("seeding.enabled", "true"); seedingEnabled == "true" {
		lifecycles = append(lifecycles, aqm.LifecycleHooks{
			OnStart: SeedingFunc(seedCtx, storage, a.logger),
			OnStop: func(context.Context) error {
				cancelSeeds()
				return nil
			},
		})
	} else {
		cancelSeeds()
	}

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handlers...),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		if a.storage != nil {
			if serr := a.storage.Stop(context.Background()); serr != nil {
				a.logger.Error("cannot stop storage", "error", serr)
			}
		}
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

// settingsRefreshInterval decides how often the settings store polls for
// writes made by other instances. Polling is off by default when change
// signals already reach the store.
func settingsRefreshInterval(config *aqm.Config, subscribed bool, logger aqm.Logger) time.Duration {
	def := "30s"
	if subscribed {
		def = "0s"
	}
	raw := config.GetStringOrDef("settings.refresh.interval", def)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		logger.Info("ignoring invalid settings.refresh.interval", "value", raw)
		d, _ = time.ParseDuration(def)
	}
	return d
}

// ApplySeeds ensures the default menu and floor plan exist. Menu and tables
// are independent so they seed concurrently.
func ApplySeeds(ctx context.Context, storage *Storage, logger aqm.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return menu.ApplySeeds(gctx, storage.Menu, assets.SeedFS, storage.Tracker, logger)
	})
	g.Go(func() error {
		return tables.ApplySeeds(gctx, storage.Tables, assets.SeedFS, storage.Tracker, logger)
	})
	return g.Wait()
}

// SeedingFunc returns an OnStart hook that applies seeds in the background.
func SeedingFunc(seedCtx context.Context, storage *Storage, logger aqm.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Info("Starting seeding in background")
		go func() {
			if err := ApplySeeds(seedCtx, storage, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Seeding failed: %v", err)
			} else if err == nil {
				logger.Info("Seeding completed successfully")
			}
		}()
		return nil
	}
}
