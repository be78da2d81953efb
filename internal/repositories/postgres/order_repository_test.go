package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrisdamba/foodmarket/internal/models"
)

func TestListOrdersQuery(t *testing.T) {
	query, args := listOrdersQuery(models.OrderFilter{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)

	query, args = listOrdersQuery(models.OrderFilter{RestaurantID: "r1", UnpaidOnly: true})
	assert.Contains(t, query, "WHERE restaurant_id = $1 AND NOT is_commission_paid")
	assert.Equal(t, []interface{}{"r1"}, args)
}

func TestUpdateOrderQuery(t *testing.T) {
	query, args := updateOrderQuery("o1", models.OrderPatch{})
	assert.Empty(t, query)
	assert.Nil(t, args)

	query, args = updateOrderQuery("o1", models.OrderPatch{IsCommissionPaid: models.Bool(true)})
	assert.Equal(t, "UPDATE orders SET is_commission_paid = $1 WHERE id = $2", query)
	assert.Equal(t, []interface{}{true, "o1"}, args)

	query, args = updateOrderQuery("o1", models.OrderPatch{
		Status:           models.String(models.OrderStatusDelivered),
		IsCommissionPaid: models.Bool(false),
	})
	assert.Equal(t, "UPDATE orders SET status = $1, is_commission_paid = $2 WHERE id = $3", query)
	assert.Equal(t, []interface{}{"delivered", false, "o1"}, args)
}
