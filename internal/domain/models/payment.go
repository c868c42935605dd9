package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PaymentRecord tracks whether one customer settled one day's delivery.
// Rows are created lazily, default to unpaid and are never auto-deleted.
type PaymentRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      string             `bson:"owner_id,omitempty" json:"ownerId,omitempty"`
	Shift        string             `bson:"shift" json:"shift"`
	Date         string             `bson:"date" json:"date"`
	CustomerName string             `bson:"customer_name" json:"customerName"`
	NameKey      string             `bson:"name_key" json:"-"`
	Paid         bool               `bson:"paid" json:"paid"`
}

// ReminderConfig is the per-shift reminder schedule. It is replaced wholesale
// on every configuration update and read fresh on every scheduler tick.
type ReminderConfig struct {
	Shift          string `bson:"shift" json:"shift"`
	Enabled        bool   `bson:"enabled" json:"enabled"`
	TargetTime     string `bson:"target_time" json:"time"`
	ActivationDate string `bson:"activation_date,omitempty" json:"activationDate,omitempty"`
	// DurationDays is informational; no expiry is enforced against it.
	DurationDays int `bson:"duration_days" json:"durationDays"`
}

// ReminderRow is one line of an unpaid-customers report. Quantity, rate and
// amount fall back to zero when no ledger entry exists for the day.
type ReminderRow struct {
	CustomerName string  `json:"customerName"`
	Quantity     float64 `json:"quantity"`
	Rate         float64 `json:"rate"`
	Amount       float64 `json:"amount"`
}
