package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

var menuItemColumns = []string{
	"id", "restaurant_id", "position", "name", "description", "price",
	"unit_type", "unit_amount", "is_menu", "base_category", "category",
}

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func copyMenuItems(ctx context.Context, tx pgx.Tx, menuItems []*models.MenuItem) error {
	if len(menuItems) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		menuItemColumns,
		pgx.CopyFromSlice(len(menuItems), func(i int) ([]interface{}, error) {
			return []interface{}{
				menuItems[i].ID,
				menuItems[i].RestaurantID,
				i,
				menuItems[i].Name,
				menuItems[i].Description,
				menuItems[i].Price,
				string(menuItems[i].UnitType),
				menuItems[i].UnitAmount,
				menuItems[i].IsMenu,
				menuItems[i].BaseCategory,
				menuItems[i].Category,
			}, nil
		}),
	)
	return err
}

const selectMenuItems = `
    SELECT id, restaurant_id, name, description, price, unit_type,
           unit_amount, is_menu, base_category, category
    FROM menu_items
`

func (r *MenuItemRepository) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	rows, err := r.pool.Query(ctx, selectMenuItems+` ORDER BY restaurant_id, position`)
	if err != nil {
		return nil, repositories.Unavailable("list menu items", err)
	}
	return scanMenuItems(rows)
}

func scanMenuItems(rows pgx.Rows) ([]*models.MenuItem, error) {
	defer rows.Close()
	var menuItems []*models.MenuItem
	for rows.Next() {
		menuItem := &models.MenuItem{}
		var unitType string
		err := rows.Scan(
			&menuItem.ID,
			&menuItem.RestaurantID,
			&menuItem.Name,
			&menuItem.Description,
			&menuItem.Price,
			&unitType,
			&menuItem.UnitAmount,
			&menuItem.IsMenu,
			&menuItem.BaseCategory,
			&menuItem.Category,
		)
		if err != nil {
			return nil, repositories.Unavailable("scan menu item", err)
		}
		menuItem.UnitType = models.UnitType(unitType)
		menuItems = append(menuItems, menuItem)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Unavailable("list menu items", err)
	}
	return menuItems, nil
}
