package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/repository/mongodb"
)

// Resolver matches free-text customer names against the active customer set
// of one (owner, shift) scope. Matching is a case-insensitive exact match on
// full name or nickname. Customers are scanned in id-ascending order, so the
// oldest record wins when two customers share a name.
type Resolver struct {
	customers mongodb.CustomerStore
	logger    *zap.Logger
}

// NewResolver wires a resolver over the customer store.
func NewResolver(customers mongodb.CustomerStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{customers: customers, logger: logger}
}

// Resolve loads the scope's active customers and matches a single name.
// Callers resolving many names against one scope should build an Index once
// instead.
func (r *Resolver) Resolve(ctx context.Context, ownerID, shift, name string) (*models.Customer, error) {
	ix, err := r.Index(ctx, ownerID, shift)
	if err != nil {
		return nil, err
	}

	customer, ok := ix.Resolve(name)
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return customer, nil
}

// Index loads the scope's active customers once and returns a lookup table
// over them. One aggregation pass builds one Index, which keeps matrix
// building at one customer scan instead of one per entry.
func (r *Resolver) Index(ctx context.Context, ownerID, shift string) (*Index, error) {
	customers, err := r.customers.ActiveByShift(ctx, ownerID, shift)
	if err != nil {
		return nil, fmt.Errorf("load active customers: %w", err)
	}
	return NewIndex(customers, r.logger), nil
}

// Index is an in-memory name lookup over one scope's active customer set.
type Index struct {
	customers []models.Customer
	byName    map[string]*models.Customer
}

// NewIndex builds the lookup table. Duplicate names keep the first customer
// in the given order and are logged as a data-quality signal.
func NewIndex(customers []models.Customer, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	ix := &Index{
		customers: customers,
		byName:    make(map[string]*models.Customer, len(customers)*2),
	}

	for i := range customers {
		c := &customers[i]
		for _, name := range []string{c.FullName, c.Nickname} {
			if name == "" {
				continue
			}
			key := models.NameKeyOf(name)
			if prev, exists := ix.byName[key]; exists {
				if prev.ID != c.ID {
					logger.Warn("duplicate customer name in shift",
						zap.String("shift", c.Shift),
						zap.String("name", name),
						zap.String("kept_id", prev.ID.Hex()),
						zap.String("ignored_id", c.ID.Hex()))
				}
				continue
			}
			ix.byName[key] = c
		}
	}

	return ix
}

// Resolve matches one name against the index.
func (ix *Index) Resolve(name string) (*models.Customer, bool) {
	customer, ok := ix.byName[models.NameKeyOf(name)]
	return customer, ok
}

// Customers returns the underlying customer set in its load order.
func (ix *Index) Customers() []models.Customer {
	return ix.customers
}
