package settings

import "context"

// Repo persists the settings record. Load returns (nil, nil) when nothing
// has been stored yet. Save is conditional on the previous version: it
// writes s only if the stored version equals s.Version-1, or inserts when
// s.Version is 1.
type Repo interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
