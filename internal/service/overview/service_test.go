package overview

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/service/identity"
)

type ledgerStoreStub struct {
	entries []models.LedgerEntry
}

func (s *ledgerStoreStub) FindByKey(_ context.Context, _, _, _, _ string) (*models.LedgerEntry, error) {
	return nil, models.ErrNotFound
}

func (s *ledgerStoreStub) Upsert(_ context.Context, entry models.LedgerEntry) (*models.LedgerEntry, error) {
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *ledgerStoreStub) DeleteByKey(_ context.Context, _, _, _, _ string) (bool, error) {
	return false, nil
}

func (s *ledgerStoreStub) DeleteByID(_ context.Context, _ string) error {
	return models.ErrNotFound
}

func (s *ledgerStoreStub) Query(_ context.Context, ownerID, shift, start, end string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, entry := range s.entries {
		if entry.OwnerID != ownerID || entry.Shift != shift {
			continue
		}
		if start != "" && entry.Date < start {
			continue
		}
		if end != "" && entry.Date > end {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
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

func entry(shift, date, name string, quantity, rateValue float64) models.LedgerEntry {
	return models.LedgerEntry{
		Shift:        shift,
		Date:         date,
		CustomerName: name,
		NameKey:      models.NameKeyOf(name),
		Quantity:     quantity,
		Rate:         rateValue,
		Amount:       quantity * rateValue,
	}
}

func newTestService(customers []models.Customer, entries []models.LedgerEntry) *Service {
	resolver := identity.NewResolver(&customerStoreStub{customers: customers}, zap.NewNop())
	return NewService(&ledgerStoreStub{entries: entries}, resolver, nil, zap.NewNop())
}

func activeCustomer(name, shift string, price float64) models.Customer {
	return models.Customer{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		Shift:        shift,
		PricePerUnit: price,
		Active:       true,
	}
}

func TestBuildMonthReport_MatrixAlwaysHasEveryDay(t *testing.T) {
	svc := newTestService(nil, nil)

	report, err := svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 2)
	require.NoError(t, err)

	assert.Equal(t, 29, report.DaysInMonth) // leap year
	assert.Len(t, report.Matrix, 29)
	for d := 1; d <= 29; d++ {
		cells, ok := report.Matrix[d]
		require.True(t, ok, "day %d missing", d)
		assert.Empty(t, cells)
	}
	assert.Equal(t, 0.0, report.GrandTotal)
}

func TestBuildMonthReport_SingleEntryScenario(t *testing.T) {
	raviCustomer := activeCustomer("Ravi", "Morning", 50)
	svc := newTestService(
		[]models.Customer{raviCustomer},
		[]models.LedgerEntry{entry("Morning", "2024-03-05", "Ravi", 2, 50)},
	)

	report, err := svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 3)
	require.NoError(t, err)

	id := raviCustomer.ID.Hex()
	cell, ok := report.Matrix[5][id]
	require.True(t, ok)
	assert.Equal(t, 2.0, cell.Quantity)
	assert.Equal(t, 100.0, cell.Amount)

	for d := 1; d <= report.DaysInMonth; d++ {
		if d == 5 {
			continue
		}
		_, present := report.Matrix[d][id]
		assert.False(t, present, "unexpected cell on day %d", d)
	}

	assert.Equal(t, 100.0, report.GrandTotal)
	assert.Equal(t, 2.0, report.TotalsByCustomerQuantity[id])
	assert.Equal(t, 100.0, report.TotalsByCustomerAmount[id])
	assert.Equal(t, 100.0, report.TotalsByDay[5])

	require.Len(t, report.Customers, 1)
	assert.Equal(t, "Ravi", report.Customers[0].Name)
	assert.Equal(t, 50.0, report.Customers[0].PricePerUnit)
}

func TestBuildMonthReport_TotalsAreConsistent(t *testing.T) {
	a := activeCustomer("Asha", "Morning", 40)
	b := activeCustomer("Bilal", "Morning", 55)
	svc := newTestService(
		[]models.Customer{a, b},
		[]models.LedgerEntry{
			entry("Morning", "2024-03-01", "Asha", 1, 40),
			entry("Morning", "2024-03-01", "Bilal", 2, 55),
			entry("Morning", "2024-03-15", "Asha", 3, 40),
			entry("Morning", "2024-03-31", "Bilal", 1.5, 55),
		},
	)

	report, err := svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 3)
	require.NoError(t, err)

	var byDay, byCustomer float64
	for _, total := range report.TotalsByDay {
		byDay += total
	}
	for _, total := range report.TotalsByCustomerAmount {
		byCustomer += total
	}

	assert.InDelta(t, report.GrandTotal, byDay, 1e-9)
	assert.InDelta(t, report.GrandTotal, byCustomer, 1e-9)
	assert.InDelta(t, 40+110+120+82.5, report.GrandTotal, 1e-9)
}

func TestBuildMonthReport_UnresolvedNamesDropped(t *testing.T) {
	raviCustomer := activeCustomer("Ravi", "Morning", 50)
	svc := newTestService(
		[]models.Customer{raviCustomer},
		[]models.LedgerEntry{
			entry("Morning", "2024-03-05", "Ravi", 2, 50),
			entry("Morning", "2024-03-05", "Stranger", 4, 50),
		},
	)

	report, err := svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 3)
	require.NoError(t, err)

	assert.Len(t, report.Matrix[5], 1)
	assert.Equal(t, 100.0, report.GrandTotal)
}

func TestBuildMonthReport_DuplicateCellsSummed(t *testing.T) {
	c := activeCustomer("Ravi", "Morning", 50)
	c.Nickname = "rav"
	svc := newTestService(
		[]models.Customer{c},
		[]models.LedgerEntry{
			// A rename can leave two entries resolving to one customer on
			// one day; their values accumulate.
			entry("Morning", "2024-03-05", "Ravi", 2, 50),
			entry("Morning", "2024-03-05", "rav", 1, 50),
		},
	)

	report, err := svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 3)
	require.NoError(t, err)

	cell := report.Matrix[5][c.ID.Hex()]
	assert.Equal(t, 3.0, cell.Quantity)
	assert.Equal(t, 150.0, cell.Amount)
}

func TestBuildMonthReport_Validation(t *testing.T) {
	svc := newTestService(nil, nil)

	var ve *models.ValidationError

	_, err := svc.BuildMonthReport(context.Background(), "", "", 2024, 3)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shift", ve.Field)

	_, err = svc.BuildMonthReport(context.Background(), "", "Morning", 2024, 13)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "month", ve.Field)

	_, err = svc.BuildMonthReport(context.Background(), "", "Morning", 0, 3)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "year", ve.Field)
}

func TestExportMonthReport_DisabledWithoutExporter(t *testing.T) {
	svc := newTestService(nil, nil)

	err := svc.ExportMonthReport(context.Background(), "", "Morning", 2024, 3)
	assert.Error(t, err)
}
