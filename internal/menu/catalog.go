package menu

import (
	"context"
	"errors"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Notifier receives change signals after successful mutations.
type Notifier interface {
	Notify(ctx context.Context, signal event.Signal)
}

// Catalog is the menu write path: it validates, persists and signals
// menu:updated. Errors come back as apperr kinds.
type Catalog struct {
	repo     MenuItemRepo
	notifier Notifier
	logger   aqm.Logger
}

func NewCatalog(repo MenuItemRepo, notifier Notifier, logger aqm.Logger) *Catalog {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Catalog{repo: repo, notifier: notifier, logger: logger}
}

func (c *Catalog) Create(ctx context.Context, req MenuItemRequest) (*MenuItem, error) {
	if err := validationError(ValidateMenuItem(req)); err != nil {
		return nil, err
	}

	item := NewMenuItem()
	item.Apply(req)
	item.BeforeCreate()

	if err := c.repo.Create(ctx, item); err != nil {
		return nil, apperr.Internal("Could not create menu item", err)
	}

	c.logger.Info("menu item created", "id", item.ID.String(), "name", item.Name)
	c.changed(ctx)
	return item, nil
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	item, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Could not load menu item", err)
	}
	if item == nil {
		return nil, apperr.NotFound("Menu item")
	}
	return item, nil
}

func (c *Catalog) List(ctx context.Context, filter ListFilter) ([]*MenuItem, error) {
	filter.Category = normalizeCategory(filter.Category)
	items, err := c.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("Could not list menu items", err)
	}
	return items, nil
}

// Update replaces every editable field of the item.
func (c *Catalog) Update(ctx context.Context, id uuid.UUID, req MenuItemRequest) (*MenuItem, error) {
	if err := validationError(ValidateMenuItem(req)); err != nil {
		return nil, err
	}

	item, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Apply(req)
	item.BeforeUpdate()

	if err := c.repo.Save(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Menu item")
		}
		return nil, apperr.Internal("Could not update menu item", err)
	}

	c.changed(ctx)
	return item, nil
}

// Delete removes the item. Orders keep their own snapshot so nothing else
// needs to change.
func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Menu item")
		}
		return apperr.Internal("Could not delete menu item", err)
	}

	c.logger.Info("menu item deleted", "id", id.String())
	c.changed(ctx)
	return nil
}

func (c *Catalog) changed(ctx context.Context) {
	if c.notifier != nil {
		c.notifier.Notify(ctx, event.NewSignal(event.MenuUpdated))
	}
}

func validationError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	details := make([]string, 0, len(errs))
	for _, e := range errs {
		details = append(details, e.Message)
	}
	return apperr.Validation("Validation failed", details...)
}
