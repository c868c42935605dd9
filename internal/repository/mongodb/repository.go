package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// CustomerStore exposes the read-only customer collection. Customer records
// are owned by the customer-management side; the ledger core never writes
// them.
type CustomerStore interface {
	ActiveByShift(ctx context.Context, ownerID, shift string) ([]models.Customer, error)
	ByShift(ctx context.Context, ownerID, shift string) ([]models.Customer, error)
	All(ctx context.Context, ownerID string) ([]models.Customer, error)
}

// LedgerStore persists delivery entries keyed by (owner, shift, date,
// customer name).
type LedgerStore interface {
	FindByKey(ctx context.Context, ownerID, shift, date, nameKey string) (*models.LedgerEntry, error)
	Upsert(ctx context.Context, entry models.LedgerEntry) (*models.LedgerEntry, error)
	DeleteByKey(ctx context.Context, ownerID, shift, date, nameKey string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	Query(ctx context.Context, ownerID, shift, start, end string) ([]models.LedgerEntry, error)
}

// PaymentStore persists daily payment rows.
type PaymentStore interface {
	InsertIfAbsent(ctx context.Context, rec models.PaymentRecord) error
	Upsert(ctx context.Context, rec models.PaymentRecord) (*models.PaymentRecord, error)
	ListForDay(ctx context.Context, ownerID, shift, date string) ([]models.PaymentRecord, error)
	ListUnpaid(ctx context.Context, shift, date string) ([]models.PaymentRecord, error)
}

// ReminderConfigStore persists per-shift reminder schedules so they survive
// process restarts; the scheduler reads them fresh on every tick.
type ReminderConfigStore interface {
	Replace(ctx context.Context, cfg models.ReminderConfig) error
	All(ctx context.Context) ([]models.ReminderConfig, error)
}

// Repository bundles the per-collection repositories over one MongoDB
// database.
type Repository struct {
	client *mongo.Client

	Customers       *CustomerRepository
	Ledger          *LedgerRepository
	Payments        *PaymentRepository
	ReminderConfigs *ReminderConfigRepository
}

// NewRepository connects to MongoDB and ensures the natural-key indexes.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	r := &Repository{
		client:          client,
		Customers:       &CustomerRepository{coll: db.Collection("customers")},
		Ledger:          &LedgerRepository{coll: db.Collection("ledger_entries")},
		Payments:        &PaymentRepository{coll: db.Collection("payments")},
		ReminderConfigs: &ReminderConfigRepository{coll: db.Collection("reminder_configs")},
	}

	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureIndexes creates the unique natural-key indexes. The unique
// constraints are what keep concurrent writers from producing duplicate rows
// for one (owner, shift, date, customer) key.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	naturalKey := bson.D{
		{Key: "owner_id", Value: 1},
		{Key: "shift", Value: 1},
		{Key: "date", Value: 1},
		{Key: "name_key", Value: 1},
	}

	specs := map[*mongo.Collection][]mongo.IndexModel{
		r.Ledger.coll: {
			{Keys: naturalKey, Options: options.Index().SetUnique(true)},
		},
		r.Payments.coll: {
			{Keys: naturalKey, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "shift", Value: 1}, {Key: "date", Value: 1}, {Key: "paid", Value: 1}}},
		},
		r.ReminderConfigs.coll: {
			{Keys: bson.D{{Key: "shift", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		r.Customers.coll: {
			{Keys: bson.D{{Key: "shift", Value: 1}, {Key: "active", Value: 1}}},
		},
	}

	for coll, indexModels := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// scoped adds the owner dimension to a filter when an owner id is present.
// An empty owner id means single-tenant mode and matches unscoped rows.
func scoped(ownerID string, filter bson.M) bson.M {
	if ownerID != "" {
		filter["owner_id"] = ownerID
	} else {
		filter["owner_id"] = bson.M{"$exists": false}
	}
	return filter
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
