package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetService_Load_CreatesDefault(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	svc := NewBudgetService(kv, dec("1000"))

	require.NoError(t, svc.Load(context.Background()))

	assert.True(t, svc.MonthlyBudget().Equal(dec("1000")))
	stored, ok := kv.Value(domain.KeyMonthlyBudget)
	require.True(t, ok)
	assert.Equal(t, "1000", stored)
	assert.True(t, svc.Loaded())
}

func TestBudgetService_Load_ReadsStored(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.Values[domain.KeyMonthlyBudget] = "2500.50"
	svc := NewBudgetService(kv, dec("1000"))

	require.NoError(t, svc.Load(context.Background()))

	assert.True(t, svc.MonthlyBudget().Equal(dec("2500.50")))
}

func TestBudgetService_Load_InvalidStoredUsesDefault(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.Values[domain.KeyMonthlyBudget] = "lots"
	svc := NewBudgetService(kv, dec("750"))

	require.NoError(t, svc.Load(context.Background()))

	assert.True(t, svc.MonthlyBudget().Equal(dec("750")))
}

func TestBudgetService_Load_StorageError(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.GetFn = func(ctx context.Context, key string) (string, error) {
		return "", &domain.PersistenceError{Op: "get", Key: key, Err: errors.New("io")}
	}
	svc := NewBudgetService(kv, dec("1000"))

	err := svc.Load(context.Background())

	var perr *domain.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.False(t, svc.Loaded())
}

func TestBudgetService_SetBudget(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	svc := NewBudgetService(kv, dec("1000"))
	ctx := context.Background()

	require.NoError(t, svc.SetBudget(ctx, dec("1200")))
	assert.True(t, svc.MonthlyBudget().Equal(dec("1200")))
	assert.Equal(t, "1200", kv.Values[domain.KeyMonthlyBudget])

	require.NoError(t, svc.SetBudget(ctx, dec("0")))
	assert.True(t, svc.MonthlyBudget().IsZero())
}

func TestBudgetService_SetBudget_RejectsNegative(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	svc := NewBudgetService(kv, dec("1000"))

	err := svc.SetBudget(context.Background(), dec("-10"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, svc.MonthlyBudget().Equal(dec("1000")))
	_, stored := kv.Value(domain.KeyMonthlyBudget)
	assert.False(t, stored)
}

func TestBudgetService_SetBudget_PersistFailureNotCommitted(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.SetFn = func(ctx context.Context, key, value string) error {
		return &domain.PersistenceError{Op: "set", Key: key, Err: errors.New("read-only")}
	}
	svc := NewBudgetService(kv, dec("1000"))

	err := svc.SetBudget(context.Background(), dec("300"))

	require.Error(t, err)
	assert.True(t, svc.MonthlyBudget().Equal(dec("1000")))
}
