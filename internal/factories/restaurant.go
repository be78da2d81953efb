package factories

import (
	"fmt"
	"sync"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodmarket/internal/models"
)

type RestaurantFactory struct {
	gen       *Generator
	nameCache sync.Map // to track used names
}

// CreateRestaurant builds a restaurant with a full menu drawn from the
// catalogue. About one in five restaurants trades past midnight.
func (rf *RestaurantFactory) CreateRestaurant() *models.Restaurant {
	g := rf.gen
	openTime := g.fake.IntBetween(7, 12)
	closeTime := g.fake.IntBetween(21, 23)
	if g.rng.Float64() < 0.2 {
		openTime = g.fake.IntBetween(16, 19)
		closeTime = g.fake.IntBetween(1, 4)
	}

	restaurant := &models.Restaurant{
		ID:        cuid.New(),
		Name:      rf.createUniqueName(g.fake.Company().Name()),
		OpenTime:  openTime,
		CloseTime: closeTime,
		Status:    models.RestaurantStatusOpen,
		Rating:    g.fake.Float64(1, 1, 5),
		Cuisines:  rf.generateRandomCuisines(),
	}
	restaurant.Menu = g.MenuItems.CreateMenu(restaurant)
	return restaurant
}

func (rf *RestaurantFactory) CreateRestaurants(n int) []*models.Restaurant {
	restaurants := make([]*models.Restaurant, n)
	for i := range restaurants {
		restaurants[i] = rf.CreateRestaurant()
	}
	return restaurants
}

func (rf *RestaurantFactory) createUniqueName(base string) string {
	name := base
	counter := 2
	for {
		if _, exists := rf.nameCache.LoadOrStore(name, true); !exists {
			return name
		}
		name = fmt.Sprintf("%s %d", base, counter)
		counter++
	}
}

func (rf *RestaurantFactory) generateRandomCuisines() []string {
	allCuisines := []string{"Turkish", "Kebab", "Pizza", "Burger", "Street Food", "Desserts", "Homemade", "Mediterranean"}
	cuisineCount := rf.gen.rng.Intn(3) + 1 // 1 to 3 cuisines
	cuisines := make([]string, 0, cuisineCount)
	seen := make(map[string]bool)
	for len(cuisines) < cuisineCount {
		c := allCuisines[rf.gen.rng.Intn(len(allCuisines))]
		if seen[c] {
			continue
		}
		seen[c] = true
		cuisines = append(cuisines, c)
	}
	return cuisines
}
