package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/tables"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tablesCollection = "tables"

type TableRepo struct {
	collection *mongo.Collection
}

func NewTableRepo(db *mongo.Database) *TableRepo {
	return &TableRepo{
		collection: db.Collection(tablesCollection),
	}
}

func ensureTableIndexes(ctx context.Context, c *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create table number index: %w", err)
	}
	return nil
}

func (r *TableRepo) Create(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tables.ErrDuplicateNumber
		}
		return fmt.Errorf("cannot create table: %w", err)
	}

	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TableRepo) GetByNumber(ctx context.Context, number int) (*tables.Table, error) {
	return r.findOne(ctx, bson.M{"number": number})
}

func (r *TableRepo) findOne(ctx context.Context, query bson.M) (*tables.Table, error) {
	var table tables.Table
	err := r.collection.FindOne(ctx, query).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return &table, nil
}

func (r *TableRepo) List(ctx context.Context) ([]*tables.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer cursor.Close(ctx)

	result := []*tables.Table{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode tables: %w", err)
	}

	return result, nil
}

func (r *TableRepo) Save(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": table.ID}, bson.M{"$set": table})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tables.ErrDuplicateNumber
		}
		return fmt.Errorf("cannot update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return tables.ErrNotFound
	}

	return nil
}

func (r *TableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete table: %w", err)
	}

	if result.DeletedCount == 0 {
		return tables.ErrNotFound
	}

	return nil
}
