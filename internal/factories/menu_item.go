package factories

import (
	"math"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodmarket/internal/models"
)

type MenuItemFactory struct {
	gen *Generator
}

// CreateMenu picks between a third and all of the catalogue. Each restaurant
// applies its own markup so that prices differ across the market.
func (mf *MenuItemFactory) CreateMenu(restaurant *models.Restaurant) []models.MenuItem {
	g := mf.gen
	markup := 0.8 + g.rng.Float64()*0.6

	count := len(g.catalog)/3 + g.rng.Intn(len(g.catalog)-len(g.catalog)/3+1)
	if count == 0 {
		count = 1
	}
	picked := g.rng.Perm(len(g.catalog))[:count]

	menu := make([]models.MenuItem, 0, count)
	for _, idx := range picked {
		menu = append(menu, mf.CreateMenuItem(restaurant, g.catalog[idx], markup))
	}
	return menu
}

func (mf *MenuItemFactory) CreateMenuItem(restaurant *models.Restaurant, dish models.CatalogDish, markup float64) models.MenuItem {
	g := mf.gen
	return models.MenuItem{
		ID:           cuid.New(),
		RestaurantID: restaurant.ID,
		Name:         dish.Name,
		Description:  g.fake.Lorem().Sentence(8),
		Price:        price(dish, markup*(0.9+g.rng.Float64()*0.2)),
		UnitType:     dish.UnitType,
		UnitAmount:   dish.UnitAmount,
		IsMenu:       dish.IsMenu,
		BaseCategory: dish.BaseCategory,
		Category:     menuCategory(dish),
	}
}

func price(dish models.CatalogDish, factor float64) float64 {
	base, ok := basePrices[dish.BaseCategory]
	if !ok {
		base = 150
	}
	if dish.IsMenu {
		base = menuBundlePrice
	}
	if dish.UnitAmount > 0 && dish.UnitType != models.UnitPiece && dish.UnitType != models.UnitPortion {
		base *= dish.UnitAmount
	}
	return math.Round(base*factor*100) / 100
}

func menuCategory(dish models.CatalogDish) string {
	switch {
	case dish.IsMenu:
		return "menus"
	case dish.BaseCategory == "drink":
		return "drinks"
	case dish.BaseCategory == "dessert":
		return "desserts"
	default:
		return "mains"
	}
}
