package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
	"github.com/chrisdamba/foodmarket/internal/repositories/cache"
	"github.com/chrisdamba/foodmarket/internal/repositories/memory"
)

// flakyStore fails every read while down is set.
type flakyStore struct {
	*memory.Store
	down bool
	err  error
}

func (f *flakyStore) fail(op string) error {
	if f.err != nil {
		return f.err
	}
	return repositories.Unavailable(op, errors.New("connection refused"))
}

func (f *flakyStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	if f.down {
		return nil, f.fail("list restaurants")
	}
	return f.Store.ListRestaurants(ctx)
}

func (f *flakyStore) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	if f.down {
		return nil, f.fail("list orders")
	}
	return f.Store.ListOrders(ctx, filter)
}

func newFlaky() *flakyStore {
	return &flakyStore{Store: memory.NewStore(
		[]models.Restaurant{{ID: "r1", Name: "One"}},
		[]models.Order{
			{ID: "a", RestaurantID: "r1"},
			{ID: "b", RestaurantID: "r1", IsCommissionPaid: true},
			{ID: "c", RestaurantID: "r2"},
		},
	)}
}

func TestFallsBackToCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	primary := newFlaky()
	repo := New(primary, cache.NewMemoryCache(0))

	restaurants, err := repo.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	_, err = repo.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)

	primary.down = true

	restaurants, err = repo.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, "One", restaurants[0].Name)

	// narrowed from the cached unfiltered snapshot
	orders, err := repo.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a", orders[0].ID)
}

func TestEmptyWhenNothingCached(t *testing.T) {
	ctx := context.Background()
	primary := newFlaky()
	primary.down = true
	repo := New(primary, cache.NewMemoryCache(0))

	restaurants, err := repo.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Empty(t, restaurants)

	orders, err := repo.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1"})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOtherErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	primary := newFlaky()
	primary.down = true
	primary.err = context.Canceled
	repo := New(primary, cache.NewMemoryCache(0))

	_, err := repo.ListOrders(ctx, models.OrderFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWritesGoToPrimary(t *testing.T) {
	ctx := context.Background()
	primary := newFlaky()
	repo := New(primary, cache.NewMemoryCache(0))

	require.NoError(t, repo.UpdateOrder(ctx, "a", models.OrderPatch{IsCommissionPaid: models.Bool(true)}))
	unpaid, err := primary.Store.ListOrders(ctx, models.OrderFilter{UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "c", unpaid[0].ID)

	err = repo.UpdateOrder(ctx, "zzz", models.OrderPatch{IsCommissionPaid: models.Bool(true)})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOldSnapshotIsStillServed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	primary := newFlaky()
	repo := New(primary, cache.NewMemoryCache(0).WithClock(func() time.Time { return now }))

	_, err := repo.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	require.NoError(t, err)

	primary.down = true
	now = now.AddDate(0, 3, 0)
	orders, err := repo.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a", orders[0].ID)
}
