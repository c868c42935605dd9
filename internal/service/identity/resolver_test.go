package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
)

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

func (s *customerStoreStub) ByShift(_ context.Context, _, shift string) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range s.customers {
		if c.Shift == shift {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *customerStoreStub) All(_ context.Context, _ string) ([]models.Customer, error) {
	return s.customers, nil
}

func newCustomer(fullName, nickname, shift string, price float64) models.Customer {
	return models.Customer{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Nickname:     nickname,
		Shift:        shift,
		PricePerUnit: price,
		Active:       true,
	}
}

func TestResolve_CaseInsensitiveFullNameAndNickname(t *testing.T) {
	john := newCustomer("John", "johnny", "Morning", 50)
	store := &customerStoreStub{customers: []models.Customer{john}}
	r := NewResolver(store, zap.NewNop())

	for _, name := range []string{"john", "jOHN", "JOHNNY", "Johnny"} {
		got, err := r.Resolve(context.Background(), "", "Morning", name)
		require.NoError(t, err, name)
		assert.Equal(t, john.ID, got.ID, name)
	}
}

func TestResolve_UnknownNameAndWrongShift(t *testing.T) {
	store := &customerStoreStub{customers: []models.Customer{
		newCustomer("John", "", "Morning", 50),
	}}
	r := NewResolver(store, zap.NewNop())

	_, err := r.Resolve(context.Background(), "", "Morning", "Ravi")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)

	_, err = r.Resolve(context.Background(), "", "Night", "John")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
}

func TestResolve_InactiveCustomersExcluded(t *testing.T) {
	gone := newCustomer("Old Timer", "", "Morning", 40)
	gone.Active = false
	store := &customerStoreStub{customers: []models.Customer{gone}}
	r := NewResolver(store, zap.NewNop())

	_, err := r.Resolve(context.Background(), "", "Morning", "Old Timer")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
}

func TestIndex_DuplicateNamesKeepFirst(t *testing.T) {
	first := newCustomer("Ravi", "", "Morning", 50)
	second := newCustomer("Ravi", "", "Morning", 60)
	ix := NewIndex([]models.Customer{first, second}, zap.NewNop())

	got, ok := ix.Resolve("ravi")
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 50.0, got.PricePerUnit)
}

func TestIndex_NicknameSharedWithOtherFullName(t *testing.T) {
	a := newCustomer("Anil Kumar", "anil", "Morning", 45)
	b := newCustomer("Anil", "", "Morning", 55)
	ix := NewIndex([]models.Customer{a, b}, zap.NewNop())

	// "anil" was claimed by the first customer's nickname before the second
	// customer's full name was seen.
	got, ok := ix.Resolve("Anil")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
}

func TestIndex_CustomersPreservesOrder(t *testing.T) {
	a := newCustomer("A", "", "Morning", 1)
	b := newCustomer("B", "", "Morning", 2)
	ix := NewIndex([]models.Customer{a, b}, zap.NewNop())

	got := ix.Customers()
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}
