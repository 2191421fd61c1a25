package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/appetiteclub/roms/internal/menu"
	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// MenuCatalog resolves menu item references at placement time.
type MenuCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error)
}

// RateSource yields the tax rate currently in force.
type RateSource interface {
	Rate() float64
}

// Notifier receives change signals after a successful commit.
type Notifier interface {
	Notify(ctx context.Context, signal event.Signal)
}

type ServiceDeps struct {
	Repo     OrderRepo
	Catalog  MenuCatalog
	Rates    RateSource
	Notifier Notifier
	Locks    *TableLocks
	Policy   Policy
}

// Service owns every order mutation. Work on one table number is serialized
// through TableLocks; saves are additionally guarded by the order version.
type Service struct {
	repo     OrderRepo
	catalog  MenuCatalog
	rates    RateSource
	notifier Notifier
	locks    *TableLocks
	policy   Policy
	logger   aqm.Logger
	now      func() time.Time
}

func NewService(deps ServiceDeps, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	locks := deps.Locks
	if locks == nil {
		locks = NewTableLocks()
	}
	return &Service{
		repo:     deps.Repo,
		catalog:  deps.Catalog,
		rates:    deps.Rates,
		notifier: deps.Notifier,
		locks:    locks,
		policy:   deps.Policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Place appends the batch to the table's open order or opens a new one.
// The bool result is true when a new order was created.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest) (*Order, bool, error) {
	if errs := ValidatePlaceOrder(req); len(errs) > 0 {
		return nil, false, apperr.Validation("invalid order", errs...)
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, false, err
	}

	unlock := s.locks.Lock(req.TableNumber)
	defer unlock()

	now := s.now()

	existing, err := s.repo.FindOpenByTable(ctx, req.TableNumber)
	if err != nil {
		return nil, false, apperr.Internal("Could not load open order", err)
	}

	if existing != nil {
		if err := existing.AppendBatch(items, now); err != nil {
			return nil, false, apperr.Validation(err.Error())
		}
		existing.BeforeUpdate()
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, false, s.saveError(err)
		}
		s.logger.Info("items appended to open order", "order_id", existing.ID.String(), "table_number", existing.TableNumber, "items", len(items))
		s.notify(ctx, event.NewSignal(event.OrdersUpdated))
		return existing, false, nil
	}

	o := NewOrder(req.TableNumber)
	if name := strings.TrimSpace(req.CustomerName); name != "" {
		o.CustomerName = name
	}
	o.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	o.Timestamp = now
	if err := o.AppendBatch(items, now); err != nil {
		return nil, false, apperr.Validation(err.Error())
	}
	o.BeforeCreate()

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, false, s.saveError(err)
	}
	s.logger.Info("order created", "order_id", o.ID.String(), "table_number", o.TableNumber)
	s.notify(ctx, event.NewSignal(event.OrdersUpdated))
	return o, true, nil
}

// UpdateStatus applies a whole-order transition under the configured policy.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	if errs := ValidateStatusUpdate(StatusUpdateRequest{Status: status}); len(errs) > 0 {
		return nil, apperr.Validation("invalid status update", errs...)
	}

	o, err := s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.TransitionTo(status, s.policy, now)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, event.NewSignal(event.OrdersUpdated))
	return o, nil
}

// UpdateItemStatus changes one item by position. Completing the last open
// item completes the order.
func (s *Service) UpdateItemStatus(ctx context.Context, id uuid.UUID, index int, req ItemStatusUpdateRequest) (*Order, error) {
	if errs := ValidateItemStatusUpdate(req); len(errs) > 0 {
		return nil, apperr.Validation("invalid item status update", errs...)
	}

	o, err := s.mutate(ctx, id, func(o *Order, now time.Time) error {
		_, err := o.SetItemStatus(index, req.Status, req.Override, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, event.NewSignal(event.OrdersUpdated))
	s.notify(ctx, event.NewOrderItemSignal(o.ID.String()))
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Could not load order", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

// List returns orders newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != "" {
		if errs := ValidateStatusUpdate(StatusUpdateRequest{Status: filter.Status}); len(errs) > 0 {
			return nil, apperr.Validation("invalid status filter", errs...)
		}
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("Could not list orders", err)
	}
	return orders, nil
}

// mutate loads the order, takes its table lock, reloads so the mutation sees
// the latest committed state, applies fn and saves.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(o *Order, now time.Time) error) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(o.TableNumber)
	defer unlock()

	o, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	wasOpen := o.IsOpen()
	if err := fn(o, s.now()); err != nil {
		return nil, s.domainError(err)
	}

	if wasOpen && !o.IsOpen() && s.rates != nil {
		o.SnapshotTaxRate(s.rates.Rate())
	}

	o.BeforeUpdate()
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, s.saveError(err)
	}
	return o, nil
}

func (s *Service) resolveItems(ctx context.Context, reqs []PlaceItemRequest) ([]Item, error) {
	items := make([]Item, 0, len(reqs))
	var errs []string

	for i, req := range reqs {
		if req.MenuItemID == nil {
			items = append(items, Item{
				Name:     strings.TrimSpace(req.Name),
				Price:    *req.Price,
				Quantity: req.Quantity,
			})
			continue
		}

		if s.catalog == nil {
			errs = append(errs, fmt.Sprintf("items[%d].menu_item_id cannot be resolved", i))
			continue
		}

		mi, err := s.catalog.Get(ctx, *req.MenuItemID)
		if err != nil {
			return nil, apperr.Internal("Could not load menu item", err)
		}
		if mi == nil {
			errs = append(errs, fmt.Sprintf("items[%d].menu_item_id %s not found", i, req.MenuItemID.String()))
			continue
		}
		if !mi.Available {
			errs = append(errs, fmt.Sprintf("items[%d] %s is not available", i, mi.Name))
			continue
		}

		id := mi.ID
		items = append(items, Item{
			MenuItemID: &id,
			Name:       mi.Name,
			Price:      mi.Price,
			Quantity:   req.Quantity,
		})
	}

	if len(errs) > 0 {
		return nil, apperr.Validation("invalid order", errs...)
	}
	return items, nil
}

func (s *Service) domainError(err error) error {
	var te *TransitionError
	switch {
	case errors.As(err, &te),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrOrderCompleted),
		errors.Is(err, ErrItemIndexOutOfRange),
		errors.Is(err, ErrItemRegression),
		errors.Is(err, ErrInvalidItemStatus),
		errors.Is(err, ErrEmptyBatch):
		return apperr.Validation(err.Error())
	default:
		return apperr.Internal("Could not update order", err)
	}
}

func (s *Service) saveError(err error) error {
	if errors.Is(err, ErrConcurrentUpdate) {
		return apperr.Conflict("Order was modified concurrently, retry", err)
	}
	return apperr.Internal("Could not save order", err)
}

func (s *Service) notify(ctx context.Context, signal event.Signal) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, signal)
	}
}
