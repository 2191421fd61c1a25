package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection(ordersCollection),
	}
}

// ensureOrderIndexes adds a partial unique index so at most one open order
// exists per table even across processes.
func ensureOrderIndexes(ctx context.Context, c *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "table_number", Value: 1}},
			Options: options.Index().
				SetName("one_open_order_per_table").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"open": true}),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	if _, err := c.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("cannot create order indexes: %w", err)
	}
	return nil
}

// openOrderConflict maps a duplicate key on the open-order index to
// order.ErrConcurrentUpdate. It returns nil for any other error.
func openOrderConflict(err error, tableNumber int) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return fmt.Errorf("table %d already has an open order: %w", tableNumber, order.ErrConcurrentUpdate)
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		if conflict := openOrderConflict(err, o.TableNumber); conflict != nil {
			return conflict
		}
		return fmt.Errorf("cannot create order: %w", err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) FindOpenByTable(ctx context.Context, tableNumber int) (*order.Order, error) {
	var o order.Order
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"table_number": tableNumber, "open": true}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find open order for table %d: %w", tableNumber, err)
	}
	return &o, nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := bson.M{}

	if filter.Status != "" {
		query["status"] = filter.Status
	}

	if filter.TableNumber != 0 {
		query["table_number"] = filter.TableNumber
	}

	window := bson.M{}
	if !filter.From.IsZero() {
		window["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		window["$lt"] = filter.To
	}
	if len(window) > 0 {
		query["timestamp"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	result := []*order.Order{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return result, nil
}

// Save replaces the order only if the stored version still matches, then
// advances the in-memory version.
func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	next := *o
	next.Version = o.Version + 1

	filter := bson.M{"_id": o.ID, "version": o.Version}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": next})
	if err != nil {
		if conflict := openOrderConflict(err, o.TableNumber); conflict != nil {
			return conflict
		}
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrConcurrentUpdate
	}

	o.Version = next.Version
	return nil
}

func (r *OrderRepo) OpenTableNumbers(ctx context.Context) ([]int, error) {
	values, err := r.collection.Distinct(ctx, "table_number", bson.M{"open": true})
	if err != nil {
		return nil, fmt.Errorf("cannot list open tables: %w", err)
	}

	numbers := make([]int, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int32:
			numbers = append(numbers, int(n))
		case int64:
			numbers = append(numbers, int(n))
		case float64:
			numbers = append(numbers, int(n))
		}
	}
	return numbers, nil
}
