package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orders"},
		[]string{
			"id", "customer_id", "restaurant_id", "total", "original_total",
			"coupon_discount", "date", "is_commission_paid", "status", "payment_method",
		},
		pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
			return []interface{}{
				orders[i].ID,
				orders[i].CustomerID,
				orders[i].RestaurantID,
				orders[i].Total,
				orders[i].OriginalTotal,
				orders[i].CouponDiscount,
				orders[i].Date,
				orders[i].IsCommissionPaid,
				orders[i].Status,
				orders[i].PaymentMethod,
			}, nil
		}),
	)
	return err
}

// listOrdersQuery renders the SELECT for a filter with its positional args.
func listOrdersQuery(filter models.OrderFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if filter.RestaurantID != "" {
		args = append(args, filter.RestaurantID)
		where = append(where, fmt.Sprintf("restaurant_id = $%d", len(args)))
	}
	if filter.UnpaidOnly {
		where = append(where, "NOT is_commission_paid")
	}

	query := `SELECT id, customer_id, restaurant_id, total, original_total, coupon_discount,
       date, is_commission_paid, status, payment_method
FROM orders`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	return query + "\nORDER BY id", args
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query, args := listOrdersQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, repositories.Unavailable("list orders", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.RestaurantID,
			&order.Total,
			&order.OriginalTotal,
			&order.CouponDiscount,
			&order.Date,
			&order.IsCommissionPaid,
			&order.Status,
			&order.PaymentMethod,
		)
		if err != nil {
			return nil, repositories.Unavailable("scan order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Unavailable("list orders", err)
	}
	return orders, nil
}

// updateOrderQuery renders the UPDATE for the set fields of patch. It returns
// an empty query when nothing is set.
func updateOrderQuery(id string, patch models.OrderPatch) (string, []interface{}) {
	var (
		set  []string
		args []interface{}
	)
	if patch.Status != nil {
		args = append(args, *patch.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.IsCommissionPaid != nil {
		args = append(args, *patch.IsCommissionPaid)
		set = append(set, fmt.Sprintf("is_commission_paid = $%d", len(args)))
	}
	if len(set) == 0 {
		return "", nil
	}
	args = append(args, id)
	return fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(set, ", "), len(args)), args
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) error {
	query, args := updateOrderQuery(id, patch)
	if query == "" {
		return nil
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return repositories.Unavailable("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.NotFound("update order", id)
	}
	return nil
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE orders")
	return err
}
