package tables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/appetiteclub/roms/pkg/enums/tablestatus"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
)

const tableSeedApplication = "table"

type bootstrapSeedDocument struct {
	Tables []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

func loadTableSeeds(seedFS fs.FS) ([]tableSeed, error) {
	seedBytes, err := fs.ReadFile(seedFS, "seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	if len(seedBytes) == 0 {
		return nil, errors.New("table seed file is empty")
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode table seed file: %w", err)
	}

	if len(doc.Tables) == 0 {
		return nil, errors.New("table seed file does not contain tables")
	}

	return doc.Tables, nil
}

// ApplySeeds ensures all predefined tables exist. A nil tracker runs every
// seed directly; each one is idempotent on the table number.
func ApplySeeds(ctx context.Context, repo TableRepo, seedFS fs.FS, tracker seed.Tracker, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	seedDocs, err := loadTableSeeds(seedFS)
	if err != nil {
		return err
	}

	seedDefs := buildTableSeedDefinitions(seedDocs, repo, logger)
	if len(seedDefs) == 0 {
		logger.Info("No table seeds to apply")
		return nil
	}

	if tracker == nil {
		for _, def := range seedDefs {
			if err := def.Run(ctx); err != nil {
				return fmt.Errorf("seed %s: %w", def.ID, err)
			}
		}
		return nil
	}

	logger.Info("Applying table seeds", "count", len(seedDefs))
	if err := seed.Apply(ctx, tracker, seedDefs, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Table seeds applied successfully")
	return nil
}

func buildTableSeedDefinitions(raw []tableSeed, repo TableRepo, logger aqm.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, s := range raw {
		seedData := s
		if seedData.Number <= 0 {
			logger.Info("Skipping seed table with invalid number", "number", seedData.Number)
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2026-10-19_table_%d", seedData.Number),
			Description: fmt.Sprintf("Ensure table %d exists", seedData.Number),
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, logger)
			},
		})
	}

	return defs
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, logger aqm.Logger) error {
	existing, err := repo.GetByNumber(ctx, s.Number)
	if err != nil {
		return fmt.Errorf("look up table %d: %w", s.Number, err)
	}
	if existing != nil {
		logger.Debug("Seed table already exists", "number", s.Number)
		return nil
	}

	table := NewTable()
	table.Number = s.Number
	table.Capacity = s.Capacity
	if tablestatus.IsValid(s.Status) {
		table.Status = tablestatus.ByName(s.Status).Code()
	}
	table.BeforeCreate()

	if err := repo.Create(ctx, table); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return nil
		}
		return fmt.Errorf("create seed table %d: %w", s.Number, err)
	}

	logger.Info("Seed table created", "number", s.Number, "id", table.ID.String())
	return nil
}
