package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// ReminderConfigRepository implements ReminderConfigStore over the
// reminder_configs collection.
type ReminderConfigRepository struct {
	coll *mongo.Collection
}

// Replace swaps in the full reminder config for a shift.
func (r *ReminderConfigRepository) Replace(ctx context.Context, cfg models.ReminderConfig) error {
	filter := bson.M{"shift": cfg.Shift}
	opts := options.Replace().SetUpsert(true)

	_, err := r.coll.ReplaceOne(ctx, filter, cfg, opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("replace reminder config: %w", err)
	}
	return nil
}

// All returns the reminder config for every configured shift.
func (r *ReminderConfigRepository) All(ctx context.Context) ([]models.ReminderConfig, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shift", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reminder configs: %w", err)
	}
	defer cursor.Close(ctx)

	var configs []models.ReminderConfig
	if err := cursor.All(ctx, &configs); err != nil {
		return nil, fmt.Errorf("decode reminder configs: %w", err)
	}
	return configs, nil
}
