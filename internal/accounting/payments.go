package accounting

import (
	"context"
	"fmt"

	"github.com/chrisdamba/foodmarket/internal/models"
)

// OrderStore is the slice of the order repository MarkPeriodPaid needs.
type OrderStore interface {
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) error
}

// MarkPeriodPaid flags every unpaid order of the restaurant dated inside the
// week as paid and returns the ids it touched. Running it
// again for the same week touches nothing.
func (e *Engine) MarkPeriodPaid(ctx context.Context, store OrderStore, restaurantID string, week WeekKey) ([]string, error) {
	if restaurantID == "" {
		return nil, ErrMissingRestaurantID
	}
	if week.IsZero() {
		return nil, fmt.Errorf("mark period paid: week is required")
	}

	orders, err := store.ListOrders(ctx, models.OrderFilter{RestaurantID: restaurantID, UnpaidOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list unpaid orders: %w", err)
	}

	var marked []string
	for _, o := range orders {
		if o.RestaurantID != restaurantID || o.IsCommissionPaid {
			continue
		}
		at, err := ParseOrderDate(o.Date, e.Location)
		if err != nil {
			if e.Skipped != nil {
				e.Skipped(o, err)
			}
			continue
		}
		if !week.Contains(at, e.Location) {
			continue
		}
		if err := store.UpdateOrder(ctx, o.ID, models.OrderPatch{IsCommissionPaid: models.Bool(true)}); err != nil {
			return marked, fmt.Errorf("mark order %s paid: %w", o.ID, err)
		}
		marked = append(marked, o.ID)
	}
	return marked, nil
}
