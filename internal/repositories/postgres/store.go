package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodmarket/internal/models"
)

// Store bundles the repositories that share one pool.
type Store struct {
	*OrderRepository
	*RestaurantRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		OrderRepository:      NewOrderRepository(pool),
		RestaurantRepository: NewRestaurantRepository(pool),
	}
}

func (s *Store) BulkCreateRestaurants(ctx context.Context, restaurants []*models.Restaurant) error {
	return s.RestaurantRepository.BulkCreate(ctx, restaurants)
}

func (s *Store) BulkCreateOrders(ctx context.Context, orders []*models.Order) error {
	return s.OrderRepository.BulkCreate(ctx, orders)
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.OrderRepository.DeleteAll(ctx); err != nil {
		return err
	}
	return s.RestaurantRepository.DeleteAll(ctx)
}
