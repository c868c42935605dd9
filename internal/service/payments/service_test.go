package payments

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/service/identity"
)

type paymentStoreStub struct {
	records map[string]models.PaymentRecord
}

func newPaymentStoreStub() *paymentStoreStub {
	return &paymentStoreStub{records: map[string]models.PaymentRecord{}}
}

func paymentKey(rec models.PaymentRecord) string {
	return rec.OwnerID + "|" + rec.Shift + "|" + rec.Date + "|" + rec.NameKey
}

func (s *paymentStoreStub) InsertIfAbsent(_ context.Context, rec models.PaymentRecord) error {
	k := paymentKey(rec)
	if _, ok := s.records[k]; ok {
		return nil
	}
	rec.ID = primitive.NewObjectID()
	s.records[k] = rec
	return nil
}

func (s *paymentStoreStub) Upsert(_ context.Context, rec models.PaymentRecord) (*models.PaymentRecord, error) {
	k := paymentKey(rec)
	if existing, ok := s.records[k]; ok {
		rec.ID = existing.ID
	} else {
		rec.ID = primitive.NewObjectID()
	}
	s.records[k] = rec
	return &rec, nil
}

func (s *paymentStoreStub) ListForDay(_ context.Context, ownerID, shift, date string) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	for _, rec := range s.records {
		if rec.OwnerID == ownerID && rec.Shift == shift && rec.Date == date {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameKey < out[j].NameKey })
	return out, nil
}

func (s *paymentStoreStub) ListUnpaid(_ context.Context, shift, date string) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	for _, rec := range s.records {
		if rec.Shift == shift && rec.Date == date && !rec.Paid {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameKey < out[j].NameKey })
	return out, nil
}

type ledgerStoreStub struct {
	entries map[string]models.LedgerEntry
}

func ledgerKey(ownerID, shift, date, nameKey string) string {
	return ownerID + "|" + shift + "|" + date + "|" + nameKey
}

func (s *ledgerStoreStub) FindByKey(_ context.Context, ownerID, shift, date, nameKey string) (*models.LedgerEntry, error) {
	entry, ok := s.entries[ledgerKey(ownerID, shift, date, nameKey)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &entry, nil
}

func (s *ledgerStoreStub) Upsert(_ context.Context, entry models.LedgerEntry) (*models.LedgerEntry, error) {
	return &entry, nil
}

func (s *ledgerStoreStub) DeleteByKey(_ context.Context, _, _, _, _ string) (bool, error) {
	return false, nil
}

func (s *ledgerStoreStub) DeleteByID(_ context.Context, _ string) error {
	return models.ErrNotFound
}

func (s *ledgerStoreStub) Query(_ context.Context, _, _, _, _ string) ([]models.LedgerEntry, error) {
	return nil, nil
}

type configStoreStub struct {
	configs map[string]models.ReminderConfig
}

func newConfigStoreStub() *configStoreStub {
	return &configStoreStub{configs: map[string]models.ReminderConfig{}}
}

func (s *configStoreStub) Replace(_ context.Context, cfg models.ReminderConfig) error {
	s.configs[cfg.Shift] = cfg
	return nil
}

func (s *configStoreStub) All(_ context.Context) ([]models.ReminderConfig, error) {
	var out []models.ReminderConfig
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shift < out[j].Shift })
	return out, nil
}

type customerStoreStub struct {
	customers []models.Customer
}

func (s *customerStoreStub) ActiveByShift(_ context.Context, _, shift string) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range s.customers {
		if c.Shift == shift && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *customerStoreStub) ByShift(ctx context.Context, ownerID, shift string) ([]models.Customer, error) {
	return s.ActiveByShift(ctx, ownerID, shift)
}

func (s *customerStoreStub) All(_ context.Context, _ string) ([]models.Customer, error) {
	return s.customers, nil
}

type fixture struct {
	svc      *Service
	payments *paymentStoreStub
	ledger   *ledgerStoreStub
	configs  *configStoreStub
}

func newFixture(customers ...models.Customer) *fixture {
	f := &fixture{
		payments: newPaymentStoreStub(),
		ledger:   &ledgerStoreStub{entries: map[string]models.LedgerEntry{}},
		configs:  newConfigStoreStub(),
	}
	resolver := identity.NewResolver(&customerStoreStub{customers: customers}, zap.NewNop())
	f.svc = NewService(f.payments, f.ledger, f.configs, resolver, time.UTC, zap.NewNop())
	f.svc.now = func() time.Time {
		return time.Date(2024, time.March, 5, 7, 59, 0, 0, time.UTC)
	}
	return f
}

func activeCustomer(name, shift string) models.Customer {
	return models.Customer{
		ID:       primitive.NewObjectID(),
		FullName: name,
		Shift:    shift,
		Active:   true,
	}
}

func TestEnsureTodayRows_CreatesUnpaidRowsOnce(t *testing.T) {
	f := newFixture(activeCustomer("Asha", "Morning"), activeCustomer("Bilal", "Morning"))

	require.NoError(t, f.svc.EnsureTodayRows(context.Background(), "", "Morning"))
	assert.Len(t, f.payments.records, 2)

	// Second bootstrap must not duplicate or reset anything.
	_, err := f.svc.SetPaid(context.Background(), "", "Morning", "Asha", true)
	require.NoError(t, err)
	require.NoError(t, f.svc.EnsureTodayRows(context.Background(), "", "Morning"))

	rows, err := f.svc.ListToday(context.Background(), "", "Morning")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Paid)
	assert.False(t, rows[1].Paid)
}

func TestListToday_SortedByCustomerName(t *testing.T) {
	f := newFixture(
		activeCustomer("Zoya", "Morning"),
		activeCustomer("Asha", "Morning"),
		activeCustomer("Meena", "Morning"),
	)

	rows, err := f.svc.ListToday(context.Background(), "", "Morning")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Asha", rows[0].CustomerName)
	assert.Equal(t, "Meena", rows[1].CustomerName)
	assert.Equal(t, "Zoya", rows[2].CustomerName)
}

func TestSetPaid_CreatesRowWhenAbsent(t *testing.T) {
	f := newFixture()

	rec, err := f.svc.SetPaid(context.Background(), "", "Morning", "Ravi", true)
	require.NoError(t, err)
	assert.True(t, rec.Paid)
	assert.Equal(t, "2024-03-05", rec.Date)

	rec, err = f.svc.SetPaid(context.Background(), "", "Morning", "Ravi", false)
	require.NoError(t, err)
	assert.False(t, rec.Paid)
	assert.Len(t, f.payments.records, 1)
}

func TestConfigure_StampsAndClearsActivationDate(t *testing.T) {
	f := newFixture()

	cfg, err := f.svc.Configure(context.Background(), "Morning", true, "08:00", 7)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", cfg.ActivationDate)
	assert.Equal(t, 7, cfg.DurationDays)

	cfg, err = f.svc.Configure(context.Background(), "Morning", false, "08:00", 7)
	require.NoError(t, err)
	assert.Empty(t, cfg.ActivationDate)

	configs, err := f.svc.Configs(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.False(t, configs[0].Enabled)
}

func TestConfigure_RejectsBadTime(t *testing.T) {
	f := newFixture()

	var ve *models.ValidationError
	_, err := f.svc.Configure(context.Background(), "Morning", true, "8 o'clock", 0)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "time", ve.Field)
}

func TestUnpaidReport_MergesLedgerValues(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetPaid(context.Background(), "", "Morning", "Asha", false)
	require.NoError(t, err)
	_, err = f.svc.SetPaid(context.Background(), "", "Morning", "Bilal", false)
	require.NoError(t, err)
	_, err = f.svc.SetPaid(context.Background(), "", "Morning", "Paid Up", true)
	require.NoError(t, err)

	f.ledger.entries[ledgerKey("", "Morning", "2024-03-05", "asha")] = models.LedgerEntry{
		Shift: "Morning", Date: "2024-03-05", CustomerName: "Asha",
		NameKey: "asha", Quantity: 2, Rate: 50, Amount: 100,
	}

	rows, err := f.svc.UnpaidReport(context.Background(), "Morning", "2024-03-05")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Asha", rows[0].CustomerName)
	assert.Equal(t, 100.0, rows[0].Amount)

	// No delivery recorded for Bilal today: all values zero.
	assert.Equal(t, "Bilal", rows[1].CustomerName)
	assert.Equal(t, 0.0, rows[1].Quantity)
	assert.Equal(t, 0.0, rows[1].Rate)
	assert.Equal(t, 0.0, rows[1].Amount)
}
