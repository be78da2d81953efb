package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

func TestStoreOrders(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, []models.Order{
		{ID: "a", RestaurantID: "r1"},
		{ID: "b", RestaurantID: "r1", IsCommissionPaid: true},
		{ID: "c", RestaurantID: "r2"},
	})

	unpaid, err := s.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "a", unpaid[0].ID)

	require.NoError(t, s.UpdateOrder(ctx, "a", models.OrderPatch{
		IsCommissionPaid: models.Bool(true),
		Status:           models.String(models.OrderStatusDelivered),
	}))
	unpaid, err = s.ListOrders(ctx, models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unpaid)

	err = s.UpdateOrder(ctx, "missing", models.OrderPatch{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestStoreRestaurantsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore([]models.Restaurant{{ID: "r", Menu: []models.MenuItem{{ID: "m", Price: 10}}}}, nil)

	list, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	list[0].Menu[0].Price = 99

	again, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again[0].Menu[0].Price)
}
