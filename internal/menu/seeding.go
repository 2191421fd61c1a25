package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
)

const menuSeedApplication = "menu"

type bootstrapSeedDocument struct {
	Menu []menuItemSeed `json:"menu"`
}

type menuItemSeed struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Available   *bool   `json:"available"`
	Vegetarian  bool    `json:"vegetarian"`
}

func loadMenuSeeds(seedFS fs.FS) ([]menuItemSeed, error) {
	seedBytes, err := fs.ReadFile(seedFS, "seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode menu seed file: %w", err)
	}

	if len(doc.Menu) == 0 {
		return nil, errors.New("seed file does not contain menu items")
	}

	return doc.Menu, nil
}

// ApplySeeds ensures the default menu exists. A nil tracker runs every seed;
// each one is idempotent on the item name.
func ApplySeeds(ctx context.Context, repo MenuItemRepo, seedFS fs.FS, tracker seed.Tracker, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("menu repository is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	raw, err := loadMenuSeeds(seedFS)
	if err != nil {
		return err
	}

	defs := buildMenuSeedDefinitions(raw, repo, logger)

	if tracker == nil {
		for _, def := range defs {
			if err := def.Run(ctx); err != nil {
				return fmt.Errorf("seed %s: %w", def.ID, err)
			}
		}
		return nil
	}

	logger.Info("Applying menu seeds", "count", len(defs))
	return seed.Apply(ctx, tracker, defs, menuSeedApplication)
}

func buildMenuSeedDefinitions(raw []menuItemSeed, repo MenuItemRepo, logger aqm.Logger) []seed.Seed {
	var defs []seed.Seed
	for _, s := range raw {
		seedData := s
		if strings.TrimSpace(seedData.Name) == "" {
			logger.Info("Skipping seed menu item with empty name")
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          "2026-10-19_menu_" + seedIdentifier(seedData.Name),
			Description: fmt.Sprintf("Ensure menu item %s exists", seedData.Name),
			Run: func(ctx context.Context) error {
				return seedData.ensure(ctx, repo, logger)
			},
		})
	}
	return defs
}

func (s menuItemSeed) ensure(ctx context.Context, repo MenuItemRepo, logger aqm.Logger) error {
	items, err := repo.List(ctx, ListFilter{})
	if err != nil {
		return fmt.Errorf("list existing menu items: %w", err)
	}
	for _, existing := range items {
		if strings.EqualFold(existing.Name, s.Name) {
			logger.Debug("Seed menu item already exists", "name", s.Name)
			return nil
		}
	}

	item := NewMenuItem()
	item.Apply(MenuItemRequest{
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Category:    s.Category,
		Image:       s.Image,
		Available:   s.Available,
		Vegetarian:  s.Vegetarian,
	})
	item.BeforeCreate()

	if err := repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create seed menu item %s: %w", s.Name, err)
	}
	logger.Info("Seed menu item created", "name", s.Name, "id", item.ID.String())
	return nil
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	var builder strings.Builder
	for _, r := range value {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			builder.WriteRune('_')
		}
	}
	if builder.Len() == 0 {
		return "seed"
	}
	return builder.String()
}
