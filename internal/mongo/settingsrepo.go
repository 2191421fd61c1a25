package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/settings"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const settingsCollection = "settings"

type SettingsRepo struct {
	collection *mongo.Collection
}

func NewSettingsRepo(db *mongo.Database) *SettingsRepo {
	return &SettingsRepo{
		collection: db.Collection(settingsCollection),
	}
}

func (r *SettingsRepo) Load(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.collection.FindOne(ctx, bson.M{"_id": settings.GlobalID}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot load settings: %w", err)
	}
	return &s, nil
}

// Save inserts the first version and afterwards only replaces the record
// whose version directly precedes s.Version.
func (r *SettingsRepo) Save(ctx context.Context, s *settings.Settings) error {
	if s == nil {
		return fmt.Errorf("settings is nil")
	}

	if s.Version <= 1 {
		if _, err := r.collection.InsertOne(ctx, s); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return settings.ErrConcurrentUpdate
			}
			return fmt.Errorf("cannot create settings: %w", err)
		}
		return nil
	}

	filter := bson.M{"_id": settings.GlobalID, "version": s.Version - 1}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": s})
	if err != nil {
		return fmt.Errorf("cannot update settings: %w", err)
	}
	if result.MatchedCount == 0 {
		return settings.ErrConcurrentUpdate
	}
	return nil
}
