package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/repository/mongodb"
	"github.com/dairyops/milkledger/internal/service/identity"
)

// Service maintains the one-row-per-customer-per-day payment ledger and the
// per-shift reminder configuration.
type Service struct {
	payments mongodb.PaymentStore
	ledger   mongodb.LedgerStore
	configs  mongodb.ReminderConfigStore
	resolver *identity.Resolver
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires the payments service.
func NewService(
	payments mongodb.PaymentStore,
	ledger mongodb.LedgerStore,
	configs mongodb.ReminderConfigStore,
	resolver *identity.Resolver,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		payments: payments,
		ledger:   ledger,
		configs:  configs,
		resolver: resolver,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// EnsureTodayRows creates today's unpaid row for every active customer in
// scope that does not have one yet. Idempotent; existing rows, paid or not,
// are left alone.
func (s *Service) EnsureTodayRows(ctx context.Context, ownerID, shift string) error {
	if shift == "" {
		return models.NewValidationError("shift", "shift is required")
	}

	ix, err := s.resolver.Index(ctx, ownerID, shift)
	if err != nil {
		return err
	}

	date := s.today()
	for _, c := range ix.Customers() {
		name := c.DisplayName()
		if name == "" {
			continue
		}

		rec := models.PaymentRecord{
			OwnerID:      ownerID,
			Shift:        shift,
			Date:         date,
			CustomerName: name,
			NameKey:      models.NameKeyOf(name),
			Paid:         false,
		}
		if err := s.payments.InsertIfAbsent(ctx, rec); err != nil {
			return fmt.Errorf("bootstrap payment row for %s: %w", name, err)
		}
	}
	return nil
}

// ListToday bootstraps missing rows and returns today's payment rows sorted
// by customer name ascending.
func (s *Service) ListToday(ctx context.Context, ownerID, shift string) ([]models.PaymentRecord, error) {
	if err := s.EnsureTodayRows(ctx, ownerID, shift); err != nil {
		return nil, err
	}
	return s.payments.ListForDay(ctx, ownerID, shift, s.today())
}

// SetPaid upserts today's payment row for a customer and returns it.
func (s *Service) SetPaid(ctx context.Context, ownerID, shift, customerName string, paid bool) (*models.PaymentRecord, error) {
	if shift == "" {
		return nil, models.NewValidationError("shift", "shift is required")
	}
	if customerName == "" {
		return nil, models.NewValidationError("customerName", "customer name is required")
	}

	rec := models.PaymentRecord{
		OwnerID:      ownerID,
		Shift:        shift,
		Date:         s.today(),
		CustomerName: customerName,
		NameKey:      models.NameKeyOf(customerName),
		Paid:         paid,
	}
	return s.payments.Upsert(ctx, rec)
}

// Configure replaces a shift's reminder config wholesale. Enabling stamps
// the activation date; disabling clears it.
func (s *Service) Configure(ctx context.Context, shift string, enabled bool, targetTime string, durationDays int) (*models.ReminderConfig, error) {
	if shift == "" {
		return nil, models.NewValidationError("shift", "shift is required")
	}
	if enabled {
		if _, err := time.Parse("15:04", targetTime); err != nil {
			return nil, models.NewValidationError("time", "time must be formatted as HH:MM")
		}
	}

	cfg := models.ReminderConfig{
		Shift:        shift,
		Enabled:      enabled,
		TargetTime:   targetTime,
		DurationDays: durationDays,
	}
	if enabled {
		cfg.ActivationDate = s.today()
	}

	if err := s.configs.Replace(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info("reminder config replaced",
		zap.String("shift", shift),
		zap.Bool("enabled", enabled),
		zap.String("time", targetTime))
	return &cfg, nil
}

// Configs returns the stored reminder config for every shift.
func (s *Service) Configs(ctx context.Context) ([]models.ReminderConfig, error) {
	return s.configs.All(ctx)
}

// UnpaidReport composes the reminder rows for one shift and day: every
// unpaid customer with the day's delivered quantity, rate and amount, all
// zero when no ledger entry exists for the key.
func (s *Service) UnpaidReport(ctx context.Context, shift, date string) ([]models.ReminderRow, error) {
	unpaid, err := s.payments.ListUnpaid(ctx, shift, date)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ReminderRow, 0, len(unpaid))
	for _, p := range unpaid {
		row := models.ReminderRow{CustomerName: p.CustomerName}

		entry, err := s.ledger.FindByKey(ctx, p.OwnerID, shift, date, p.NameKey)
		switch {
		case err == nil:
			row.Quantity = entry.Quantity
			row.Rate = entry.Rate
			row.Amount = entry.Amount
		case errors.Is(err, models.ErrNotFound):
			// No delivery recorded today; the row still goes out with zeros.
		default:
			return nil, err
		}

		rows = append(rows, row)
	}
	return rows, nil
}
