package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// CustomerRepository implements CustomerStore over the customers collection.
type CustomerRepository struct {
	coll *mongo.Collection
}

// ActiveByShift returns active customers for one shift, sorted by id
// ascending. The sort keeps name resolution deterministic when two customers
// share a name: the oldest record wins.
func (r *CustomerRepository) ActiveByShift(ctx context.Context, ownerID, shift string) ([]models.Customer, error) {
	return r.find(ctx, scoped(ownerID, bson.M{"shift": shift, "active": true}))
}

// ByShift returns all customers for one shift, soft-deleted ones included.
func (r *CustomerRepository) ByShift(ctx context.Context, ownerID, shift string) ([]models.Customer, error) {
	return r.find(ctx, scoped(ownerID, bson.M{"shift": shift}))
}

// All returns every customer in scope.
func (r *CustomerRepository) All(ctx context.Context, ownerID string) ([]models.Customer, error) {
	return r.find(ctx, scoped(ownerID, bson.M{}))
}

func (r *CustomerRepository) find(ctx context.Context, filter bson.M) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}
