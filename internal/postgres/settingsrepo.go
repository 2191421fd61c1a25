package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/settings"
	"github.com/jackc/pgx/v5"
)

type SettingsRepo struct {
	pool Querier
}

func NewSettingsRepo(pool Querier) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Load(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx,
		`SELECT id, gst_rate, version, updated_at FROM settings WHERE id = $1`, settings.GlobalID,
	).Scan(&s.ID, &s.GSTRate, &s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot load settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s *settings.Settings) error {
	if s == nil {
		return fmt.Errorf("settings is nil")
	}

	if s.Version <= 1 {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO settings (id, gst_rate, version, updated_at) VALUES ($1, $2, $3, $4)`,
			settings.GlobalID, s.GSTRate, s.Version, s.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return settings.ErrConcurrentUpdate
			}
			return fmt.Errorf("cannot create settings: %w", err)
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE settings SET gst_rate = $2, version = $3, updated_at = $4 WHERE id = $1 AND version = $5`,
		settings.GlobalID, s.GSTRate, s.Version, s.UpdatedAt, s.Version-1)
	if err != nil {
		return fmt.Errorf("cannot update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrConcurrentUpdate
	}
	return nil
}
