package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

type RestaurantRepository struct {
	pool  *pgxpool.Pool
	menus *MenuItemRepository
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool, menus: NewMenuItemRepository(pool)}
}

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, restaurant := range restaurants {
		batch.Queue(`
            INSERT INTO restaurants (id, name, open_time, close_time, status, rating, cuisines)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			restaurant.ID,
			restaurant.Name,
			restaurant.OpenTime,
			restaurant.CloseTime,
			restaurant.Status,
			restaurant.Rating,
			restaurant.Cuisines,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	var items []*models.MenuItem
	for _, restaurant := range restaurants {
		for i := range restaurant.Menu {
			item := restaurant.Menu[i]
			item.RestaurantID = restaurant.ID
			items = append(items, &item)
		}
	}
	if err := copyMenuItems(ctx, tx, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListRestaurants loads every restaurant with its menu in position order.
func (r *RestaurantRepository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, open_time, close_time, status, rating, cuisines
        FROM restaurants
        ORDER BY id
    `)
	if err != nil {
		return nil, repositories.Unavailable("list restaurants", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	index := make(map[string]int)
	for rows.Next() {
		var restaurant models.Restaurant
		err := rows.Scan(
			&restaurant.ID,
			&restaurant.Name,
			&restaurant.OpenTime,
			&restaurant.CloseTime,
			&restaurant.Status,
			&restaurant.Rating,
			&restaurant.Cuisines,
		)
		if err != nil {
			return nil, repositories.Unavailable("scan restaurant", err)
		}
		index[restaurant.ID] = len(restaurants)
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Unavailable("list restaurants", err)
	}

	items, err := r.menus.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if i, ok := index[item.RestaurantID]; ok {
			restaurants[i].Menu = append(restaurants[i].Menu, *item)
		}
	}
	return restaurants, nil
}

func (r *RestaurantRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE restaurants CASCADE")
	return err
}
