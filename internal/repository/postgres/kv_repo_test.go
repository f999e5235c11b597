package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepository(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo, err := NewKVRepository(ctx, pool)
	require.NoError(t, err)

	const key = "test_monthlyBudget"
	t.Cleanup(func() { _ = repo.Remove(context.Background(), key) })

	_, err = repo.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, repo.Set(ctx, key, "1000"))
	require.NoError(t, repo.Set(ctx, key, "1200"))

	v, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "1200", v)

	require.NoError(t, repo.Remove(ctx, key))
	_, err = repo.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}
