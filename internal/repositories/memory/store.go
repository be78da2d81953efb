// Package memory holds an in-process store used for tests, demos and as the
// target of cache restores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

type Store struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	orders      []models.Order
	invoices    map[string]accounting.InvoiceRecord
}

func NewStore(restaurants []models.Restaurant, orders []models.Order) *Store {
	return &Store{
		restaurants: append([]models.Restaurant(nil), restaurants...),
		orders:      append([]models.Order(nil), orders...),
		invoices:    make(map[string]accounting.InvoiceRecord),
	}
}

func (s *Store) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Restaurant, len(s.restaurants))
	for i, r := range s.restaurants {
		r.Menu = append([]models.MenuItem(nil), r.Menu...)
		out[i] = r
	}
	return out, nil
}

func (s *Store) ListOrders(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Order
	for _, o := range s.orders {
		if filter.Match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) UpdateOrder(_ context.Context, id string, patch models.OrderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.orders[i].Status = *patch.Status
		}
		if patch.IsCommissionPaid != nil {
			s.orders[i].IsCommissionPaid = *patch.IsCommissionPaid
		}
		return nil
	}
	return repositories.NotFound("update order", id)
}

func (s *Store) UpsertInvoices(_ context.Context, invoices []accounting.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	return nil
}

func (s *Store) ListInvoices(_ context.Context, restaurantID string) ([]accounting.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []accounting.InvoiceRecord
	for _, inv := range s.invoices {
		if restaurantID == "" || inv.RestaurantID == restaurantID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.WeekEnd.After(out[j].Period.WeekEnd)
	})
	return out, nil
}

func (s *Store) BulkCreateRestaurants(_ context.Context, restaurants []*models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range restaurants {
		s.restaurants = append(s.restaurants, *r)
	}
	return nil
}

func (s *Store) BulkCreateOrders(_ context.Context, orders []*models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		s.orders = append(s.orders, *o)
	}
	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants = nil
	s.orders = nil
	s.invoices = make(map[string]accounting.InvoiceRecord)
	return nil
}
