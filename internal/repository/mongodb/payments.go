package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// PaymentRepository implements PaymentStore over the payments collection.
type PaymentRepository struct {
	coll *mongo.Collection
}

func paymentKeyFilter(rec models.PaymentRecord) bson.M {
	return scoped(rec.OwnerID, bson.M{
		"shift":    rec.Shift,
		"date":     rec.Date,
		"name_key": rec.NameKey,
	})
}

// InsertIfAbsent creates the payment row for a natural key unless one already
// exists. The unique index makes concurrent bootstraps collapse to one row.
func (r *PaymentRepository) InsertIfAbsent(ctx context.Context, rec models.PaymentRecord) error {
	update := bson.M{"$setOnInsert": bson.M{
		"customer_name": rec.CustomerName,
		"paid":          rec.Paid,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, paymentKeyFilter(rec), update, opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert payment row: %w", err)
	}
	return nil
}

// Upsert writes the paid flag for a natural key, creating the row when
// absent, and returns the stored record.
func (r *PaymentRepository) Upsert(ctx context.Context, rec models.PaymentRecord) (*models.PaymentRecord, error) {
	filter := paymentKeyFilter(rec)
	update := bson.M{"$set": bson.M{
		"customer_name": rec.CustomerName,
		"paid":          rec.Paid,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.PaymentRecord
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert payment row: %w", err)
	}
	return &saved, nil
}

// ListForDay returns payment rows for one shift and day, sorted by customer
// name ascending.
func (r *PaymentRepository) ListForDay(ctx context.Context, ownerID, shift, date string) ([]models.PaymentRecord, error) {
	return r.find(ctx, scoped(ownerID, bson.M{"shift": shift, "date": date}))
}

// ListUnpaid returns unpaid rows for one shift and day across all owners.
// The reminder report is composed owner by owner from the rows themselves.
func (r *PaymentRepository) ListUnpaid(ctx context.Context, shift, date string) ([]models.PaymentRecord, error) {
	return r.find(ctx, bson.M{"shift": shift, "date": date, "paid": false})
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]models.PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []models.PaymentRecord
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return payments, nil
}
