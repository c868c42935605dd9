package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is an identity record owned by the customer-management side of the
// system; the ledger core only ever reads it.
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      string             `bson:"owner_id,omitempty" json:"ownerId,omitempty"`
	FullName     string             `bson:"full_name" json:"fullName"`
	Nickname     string             `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Shift        string             `bson:"shift" json:"shift"`
	PricePerUnit float64            `bson:"price_per_unit" json:"pricePerLitre"`
	Active       bool               `bson:"active" json:"active"`
}

// DisplayName prefers the full name and falls back to the nickname.
func (c Customer) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.Nickname
}

// MatchesName reports whether name equals the full name or nickname,
// case-insensitively.
func (c Customer) MatchesName(name string) bool {
	if c.FullName != "" && strings.EqualFold(c.FullName, name) {
		return true
	}
	return c.Nickname != "" && strings.EqualFold(c.Nickname, name)
}
