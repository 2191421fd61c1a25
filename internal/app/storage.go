package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appetiteclub/roms/internal/menu"
	"github.com/appetiteclub/roms/internal/mongo"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/internal/postgres"
	"github.com/appetiteclub/roms/internal/settings"
	"github.com/appetiteclub/roms/internal/tables"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Storage bundles the repositories of one backend. Tracker is nil when the
// backend has no seed tracking, in which case seeds rely on being idempotent.
type Storage struct {
	Backend  string
	Orders   order.OrderRepo
	Menu     menu.MenuItemRepo
	Tables   tables.TableRepo
	Settings settings.Repo
	Tracker  seed.Tracker

	stop  func(ctx context.Context) error
	reset func(ctx context.Context) error

	stopOnce sync.Once
	stopErr  error
}

// OpenStorage connects the backend named by db.backend and returns its
// repositories.
func OpenStorage(ctx context.Context, config *aqm.Config, logger aqm.Logger) (*Storage, error) {
	backend := config.GetStringOrDef("db.backend", BackendMongo)

	switch backend {
	case BackendMongo:
		base := mongo.NewBaseRepo(config, logger)
		if err := base.Start(ctx); err != nil {
			return nil, err
		}
		db := base.GetDatabase()
		if db == nil {
			return nil, errors.New("repository database is nil")
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = base.Stop(context.Background())
			return nil, err
		}
		return &Storage{
			Backend:  backend,
			Orders:   mongo.NewOrderRepo(db),
			Menu:     mongo.NewMenuItemRepo(db),
			Tables:   mongo.NewTableRepo(db),
			Settings: mongo.NewSettingsRepo(db),
			Tracker:  seed.NewMongoTracker(db),
			stop:     base.Stop,
			reset: func(ctx context.Context) error {
				return mongo.Reset(ctx, db)
			},
		}, nil

	case BackendPostgres:
		db := postgres.NewDB(config, logger)
		if err := db.Start(ctx); err != nil {
			return nil, err
		}
		pool := db.Pool()
		return &Storage{
			Backend:  backend,
			Orders:   postgres.NewOrderRepo(pool),
			Menu:     postgres.NewMenuItemRepo(pool),
			Tables:   postgres.NewTableRepo(pool),
			Settings: postgres.NewSettingsRepo(pool),
			stop:     db.Stop,
			reset:    db.Reset,
		}, nil

	default:
		return nil, fmt.Errorf("unknown db.backend %q", backend)
	}
}

// Stop closes the backend once. Later calls return the first result, so the
// lifecycle hook and the failed-run cleanup can both call it.
func (s *Storage) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if s.stop != nil {
			s.stopErr = s.stop(ctx)
		}
	})
	return s.stopErr
}

// Reset removes every record, seed tracking included.
func (s *Storage) Reset(ctx context.Context) error {
	if s.reset == nil {
		return nil
	}
	return s.reset(ctx)
}
