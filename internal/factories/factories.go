// Package factories generates demo restaurants, menus and orders for the seed
// command and for tests.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/foodmarket/internal/models"
)

// DefaultCatalog is used when the configuration carries no catalogue.
var DefaultCatalog = []models.CatalogDish{
	{Name: "Adana Kebap", BaseCategory: "kebab", UnitType: models.UnitGram, UnitAmount: 200},
	{Name: "Urfa Kebap", BaseCategory: "kebab", UnitType: models.UnitGram, UnitAmount: 200},
	{Name: "Tavuk Şiş", BaseCategory: "kebab", UnitType: models.UnitGram, UnitAmount: 180},
	{Name: "İskender Kebap", BaseCategory: "kebab", UnitType: models.UnitGram, UnitAmount: 250},
	{Name: "Tavuk Dürüm", BaseCategory: "wrap", UnitType: models.UnitPiece, UnitAmount: 1},
	{Name: "Et Dürüm", BaseCategory: "wrap", UnitType: models.UnitPiece, UnitAmount: 1},
	{Name: "Lahmacun", BaseCategory: "flatbread", UnitType: models.UnitPiece, UnitAmount: 1},
	{Name: "Kıymalı Pide", BaseCategory: "pide", UnitType: models.UnitPortion, UnitAmount: 1},
	{Name: "Kaşarlı Pide", BaseCategory: "pide", UnitType: models.UnitPortion, UnitAmount: 1},
	{Name: "Mercimek Çorbası", BaseCategory: "soup", UnitType: models.UnitMilliliter, UnitAmount: 300},
	{Name: "Ayran", BaseCategory: "drink", UnitType: models.UnitMilliliter, UnitAmount: 250},
	{Name: "Künefe", BaseCategory: "dessert", UnitType: models.UnitPortion, UnitAmount: 1},
	{Name: "Baklava", BaseCategory: "dessert", UnitType: models.UnitGram, UnitAmount: 150},
	{Name: "Margherita Pizza", BaseCategory: "pizza", UnitType: models.UnitPiece, UnitAmount: 1},
	{Name: "Pepperoni Pizza", BaseCategory: "pizza", UnitType: models.UnitPiece, UnitAmount: 1},
	{Name: "Classic Cheeseburger", BaseCategory: "burger"},
	{Name: "Double Cheeseburger", BaseCategory: "burger"},
	{Name: "Kebap Menü", BaseCategory: "kebab", IsMenu: true},
	{Name: "Burger Menü", BaseCategory: "burger", IsMenu: true},
}

// basePrices per base category, per unit for dishes that declare one.
var basePrices = map[string]float64{
	"kebab":     1.4,
	"wrap":      140,
	"flatbread": 90,
	"pide":      180,
	"soup":      0.35,
	"drink":     0.12,
	"dessert":   1.2,
	"pizza":     260,
	"burger":    230,
}

const menuBundlePrice = 380

// Generator builds related restaurants and orders from one random source so
// that a seed reproduces the same data set.
type Generator struct {
	fake    faker.Faker
	rng     *rand.Rand
	catalog []models.CatalogDish

	Restaurants *RestaurantFactory
	MenuItems   *MenuItemFactory
	Orders      *OrderFactory
}

func NewGenerator(seed int64, catalog []models.CatalogDish) *Generator {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	g := &Generator{
		fake:    faker.NewWithSeed(rand.NewSource(seed)),
		rng:     rand.New(rand.NewSource(seed)),
		catalog: catalog,
	}
	g.Restaurants = &RestaurantFactory{gen: g}
	g.MenuItems = &MenuItemFactory{gen: g}
	g.Orders = &OrderFactory{gen: g}
	return g
}

// Dataset generates n restaurants and their order history.
func (g *Generator) Dataset(n int, h OrderHistory) ([]*models.Restaurant, []*models.Order) {
	restaurants := g.Restaurants.CreateRestaurants(n)
	var orders []*models.Order
	for _, r := range restaurants {
		orders = append(orders, g.Orders.CreateOrders(r, h)...)
	}
	return restaurants, orders
}
