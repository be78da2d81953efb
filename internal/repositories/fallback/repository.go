// Package fallback serves the last cached snapshot when the primary store
// cannot be read.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
	"github.com/chrisdamba/foodmarket/internal/repositories/cache"
)

const restaurantsKey = "restaurants"

// Primary is the store being protected.
type Primary interface {
	repositories.OrderRepository
	repositories.RestaurantRepository
}

// Repository reads through the primary and refreshes the cache on success.
// Read failures that wrap repositories.ErrDataUnavailable degrade to the
// cached snapshot, or to an empty collection when there is none. Writes are
// never degraded.
type Repository struct {
	primary Primary
	cache   cache.Cache
}

func New(primary Primary, c cache.Cache) *Repository {
	return &Repository{primary: primary, cache: c}
}

func ordersKey(filter models.OrderFilter) string {
	return fmt.Sprintf("orders:%s:%t", filter.RestaurantID, filter.UnpaidOnly)
}

func degradable(err error) bool {
	return errors.Is(err, repositories.ErrDataUnavailable)
}

func (r *Repository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := r.primary.ListRestaurants(ctx)
	if err == nil {
		if cerr := r.cache.Set(ctx, restaurantsKey, restaurants); cerr != nil {
			log.Printf("[fallback] caching restaurants: %v", cerr)
		}
		return restaurants, nil
	}
	if !degradable(err) {
		return nil, err
	}

	log.Printf("[fallback] restaurants unavailable, using cached snapshot: %v", err)
	var cached []models.Restaurant
	if ok, cerr := r.cache.Get(ctx, restaurantsKey, &cached); cerr != nil || !ok {
		if cerr != nil {
			log.Printf("[fallback] reading cached restaurants: %v", cerr)
		}
		return []models.Restaurant{}, nil
	}
	return cached, nil
}

func (r *Repository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders, err := r.primary.ListOrders(ctx, filter)
	if err == nil {
		if cerr := r.cache.Set(ctx, ordersKey(filter), orders); cerr != nil {
			log.Printf("[fallback] caching orders: %v", cerr)
		}
		return orders, nil
	}
	if !degradable(err) {
		return nil, err
	}

	log.Printf("[fallback] orders unavailable, using cached snapshot: %v", err)
	// the exact snapshot first, then the wider ones narrowed down
	candidates := []models.OrderFilter{
		filter,
		{RestaurantID: filter.RestaurantID},
		{UnpaidOnly: filter.UnpaidOnly},
		{},
	}
	for _, candidate := range candidates {
		var cached []models.Order
		ok, cerr := r.cache.Get(ctx, ordersKey(candidate), &cached)
		if cerr != nil {
			log.Printf("[fallback] reading cached orders: %v", cerr)
			continue
		}
		if !ok {
			continue
		}
		narrowed := make([]models.Order, 0, len(cached))
		for _, o := range cached {
			if filter.Match(o) {
				narrowed = append(narrowed, o)
			}
		}
		return narrowed, nil
	}
	return []models.Order{}, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) error {
	return r.primary.UpdateOrder(ctx, id, patch)
}
