package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/repository/mongodb"
	"github.com/dairyops/milkledger/internal/service/identity"
)

// WriteRequest is one delivery write. A nil Rate asks the service to resolve
// the customer's current price per unit; a non-nil Rate is taken as-is.
// An empty Date means "today" in the service's timezone.
type WriteRequest struct {
	OwnerID      string
	Shift        string
	Date         string
	CustomerName string
	Quantity     float64
	Rate         *float64
}

// WriteOutcome reports what a write did. Reset means the quantity was zero
// and the row for the key is gone (whether or not one existed); otherwise
// Entry holds the stored row.
type WriteOutcome struct {
	Reset bool
	Entry *models.LedgerEntry
}

// Service is the delivery ledger write/read path.
type Service struct {
	store    mongodb.LedgerStore
	resolver *identity.Resolver
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires the ledger service.
func NewService(store mongodb.LedgerStore, resolver *identity.Resolver, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    store,
		resolver: resolver,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Record validates and applies one write. Quantity zero deletes the row for
// the natural key; any other quantity upserts it with amount = quantity ×
// rate fixed at write time.
func (s *Service) Record(ctx context.Context, req WriteRequest) (*WriteOutcome, error) {
	if req.CustomerName == "" {
		return nil, models.NewValidationError("customerName", "customer name is required")
	}
	if req.Shift == "" {
		return nil, models.NewValidationError("shift", "shift is required")
	}
	if req.Quantity < 0 {
		return nil, models.NewValidationError("quantity", "quantity must not be negative")
	}

	date := req.Date
	if date == "" {
		date = s.now().In(s.loc).Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, models.NewValidationError("date", "date must be formatted as "+models.DateLayout)
	}

	nameKey := models.NameKeyOf(req.CustomerName)

	if req.Quantity == 0 {
		existed, err := s.store.DeleteByKey(ctx, req.OwnerID, req.Shift, date, nameKey)
		if err != nil {
			return nil, err
		}
		s.logger.Info("ledger entry reset",
			zap.String("shift", req.Shift),
			zap.String("date", date),
			zap.String("customer", req.CustomerName),
			zap.Bool("existed", existed))
		return &WriteOutcome{Reset: true}, nil
	}

	rate, err := s.rateFor(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		OwnerID:      req.OwnerID,
		Shift:        req.Shift,
		Date:         date,
		CustomerName: req.CustomerName,
		NameKey:      nameKey,
		Quantity:     req.Quantity,
		Rate:         rate,
		Amount:       req.Quantity * rate,
	}

	saved, err := s.store.Upsert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("store ledger entry: %w", err)
	}
	return &WriteOutcome{Entry: saved}, nil
}

// rateFor picks the caller-supplied rate when present and otherwise resolves
// the customer's current price per unit.
func (s *Service) rateFor(ctx context.Context, req WriteRequest) (float64, error) {
	if req.Rate != nil {
		if *req.Rate < 0 {
			return 0, models.NewValidationError("rate", "rate must not be negative")
		}
		return *req.Rate, nil
	}

	customer, err := s.resolver.Resolve(ctx, req.OwnerID, req.Shift, req.CustomerName)
	if err != nil {
		return 0, err
	}
	return customer.PricePerUnit, nil
}

// Entries returns the ledger rows for a shift ordered by date ascending.
// Empty bounds are open; no bounds at all returns the full history.
func (s *Service) Entries(ctx context.Context, ownerID, shift, start, end string) ([]models.LedgerEntry, error) {
	if shift == "" {
		return nil, models.NewValidationError("shift", "shift is required")
	}
	for field, value := range map[string]string{"start": start, "end": end} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, value); err != nil {
			return nil, models.NewValidationError(field, "date must be formatted as "+models.DateLayout)
		}
	}
	return s.store.Query(ctx, ownerID, shift, start, end)
}

// Delete removes one entry by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.NewValidationError("id", "id is required")
	}
	return s.store.DeleteByID(ctx, id)
}
