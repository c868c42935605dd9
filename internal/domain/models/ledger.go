package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-day format used across storage and the API.
// Dates are stored as plain strings so that lexicographic range filters
// match chronological order.
const DateLayout = "2006-01-02"

// LedgerEntry is one delivery record. CustomerName is the free text captured
// at write time, not a foreign key; it is matched against Customer records
// when reports are built. Amount is fixed at write time and never recomputed
// from a later rate change.
type LedgerEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      string             `bson:"owner_id,omitempty" json:"ownerId,omitempty"`
	Shift        string             `bson:"shift" json:"shift"`
	Date         string             `bson:"date" json:"date"`
	CustomerName string             `bson:"customer_name" json:"customerName"`
	// NameKey is the lowercased customer name backing the unique natural-key
	// index, so "Ravi" and "ravi" address the same row.
	NameKey  string  `bson:"name_key" json:"-"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Rate     float64 `bson:"rate" json:"rate"`
	Amount   float64 `bson:"amount" json:"amount"`
}

// NameKeyOf normalizes a customer name for natural-key comparisons.
func NameKeyOf(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Day returns the day-of-month of the entry date, or 0 if the date is
// malformed.
func (e LedgerEntry) Day() int {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return 0
	}
	return t.Day()
}
