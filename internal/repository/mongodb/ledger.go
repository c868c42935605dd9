package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// LedgerRepository implements LedgerStore over the ledger_entries collection.
type LedgerRepository struct {
	coll *mongo.Collection
}

func ledgerKeyFilter(ownerID, shift, date, nameKey string) bson.M {
	return scoped(ownerID, bson.M{
		"shift":    shift,
		"date":     date,
		"name_key": nameKey,
	})
}

// FindByKey returns the single entry for a natural key, or
// models.ErrNotFound.
func (r *LedgerRepository) FindByKey(ctx context.Context, ownerID, shift, date, nameKey string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.coll.FindOne(ctx, ledgerKeyFilter(ownerID, shift, date, nameKey)).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger entry: %w", err)
	}
	return &entry, nil
}

// Upsert writes the entry under its natural key, creating or replacing the
// row. A duplicate-key race between two concurrent first writes is retried
// once so the loser lands on the update path instead of failing.
func (r *LedgerRepository) Upsert(ctx context.Context, entry models.LedgerEntry) (*models.LedgerEntry, error) {
	filter := ledgerKeyFilter(entry.OwnerID, entry.Shift, entry.Date, entry.NameKey)
	update := bson.M{"$set": bson.M{
		"customer_name": entry.CustomerName,
		"quantity":      entry.Quantity,
		"rate":          entry.Rate,
		"amount":        entry.Amount,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.LedgerEntry
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert ledger entry: %w", err)
	}
	return &saved, nil
}

// DeleteByKey removes the row for a natural key and reports whether a row
// existed. Deleting an absent row is a no-op.
func (r *LedgerRepository) DeleteByKey(ctx context.Context, ownerID, shift, date, nameKey string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, ledgerKeyFilter(ownerID, shift, date, nameKey))
	if err != nil {
		return false, fmt.Errorf("delete ledger entry: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteByID removes one entry by its id; unknown or malformed ids report
// models.ErrNotFound.
func (r *LedgerRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete ledger entry by id: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Query returns entries for a shift ordered by date ascending. Empty start
// and end bounds are open; an unbounded query returns the full history.
func (r *LedgerRepository) Query(ctx context.Context, ownerID, shift, start, end string) ([]models.LedgerEntry, error) {
	filter := scoped(ownerID, bson.M{"shift": shift})

	dateRange := bson.M{}
	if start != "" {
		dateRange["$gte"] = start
	}
	if end != "" {
		dateRange["$lte"] = end
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode ledger entries: %w", err)
	}
	return entries, nil
}
