package repositories

import (
	"context"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/models"
)

type OrderRepository interface {
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) error
}

type RestaurantRepository interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
}

// InvoiceRepository keeps an audit copy of computed invoices.
type InvoiceRepository interface {
	UpsertInvoices(ctx context.Context, invoices []accounting.InvoiceRecord) error
	ListInvoices(ctx context.Context, restaurantID string) ([]accounting.InvoiceRecord, error)
}

// Seeder is implemented by stores that can be bulk loaded with demo data.
type Seeder interface {
	BulkCreateRestaurants(ctx context.Context, restaurants []*models.Restaurant) error
	BulkCreateOrders(ctx context.Context, orders []*models.Order) error
	DeleteAll(ctx context.Context) error
}
