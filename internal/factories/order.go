package factories

import (
	"math"
	"time"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/models"
)

// Orders are stored with the date layouts the legacy clients wrote.
var dateLayouts = []string{
	"02.01.2006",
	"02.01.2006 15:04",
	time.RFC3339,
}

type OrderFactory struct {
	gen *Generator
}

// OrderHistory describes the span of orders to generate for a restaurant.
type OrderHistory struct {
	Now           time.Time
	Weeks         int
	OrdersPerWeek int
	// LatePayerRatio of restaurants leave their commission unpaid.
	LatePayerRatio float64
}

// CreateOrders generates orders for the restaurant over the trailing weeks.
// Commission on weeks before last week is paid unless the restaurant was
// drawn as a late payer.
func (of *OrderFactory) CreateOrders(restaurant *models.Restaurant, h OrderHistory) []*models.Order {
	g := of.gen
	if h.Weeks <= 0 || h.OrdersPerWeek <= 0 || len(restaurant.Menu) == 0 {
		return nil
	}
	latePayer := g.rng.Float64() < h.LatePayerRatio
	unpaidWeeks := 1
	if latePayer {
		unpaidWeeks = 1 + g.rng.Intn(h.Weeks)
	}

	thisMonday := accounting.WeekKeyOf(h.Now).Start(h.Now.Location())
	var orders []*models.Order
	for w := 0; w < h.Weeks; w++ {
		weekStart := thisMonday.AddDate(0, 0, -7*w)
		paid := w > unpaidWeeks
		n := h.OrdersPerWeek/2 + g.rng.Intn(h.OrdersPerWeek+1)
		for i := 0; i < n; i++ {
			at := weekStart.Add(time.Duration(g.rng.Int63n(int64(7 * 24 * time.Hour))))
			if at.After(h.Now) {
				continue
			}
			orders = append(orders, of.CreateOrder(restaurant, at, paid))
		}
	}
	return orders
}

func (of *OrderFactory) CreateOrder(restaurant *models.Restaurant, at time.Time, commissionPaid bool) *models.Order {
	g := of.gen
	total := 0.0
	items := 1 + g.rng.Intn(3)
	for i := 0; i < items; i++ {
		total += restaurant.Menu[g.rng.Intn(len(restaurant.Menu))].Price
	}
	total = math.Round(total*100) / 100

	order := &models.Order{
		ID:               cuid.New(),
		CustomerID:       cuid.New(),
		RestaurantID:     restaurant.ID,
		Total:            total,
		Date:             at.Format(dateLayouts[g.rng.Intn(len(dateLayouts))]),
		IsCommissionPaid: commissionPaid,
		Status:           models.OrderStatusDelivered,
		PaymentMethod:    g.fake.RandomStringElement([]string{"card", "cash", "wallet"}),
	}
	if g.rng.Float64() < 0.15 {
		discount := math.Round(total*0.1*100) / 100
		order.OriginalTotal = models.Float64(total)
		order.CouponDiscount = discount
		order.Total = total - discount
	}
	if g.rng.Float64() < 0.05 {
		order.Status = models.OrderStatusCancelled
	}
	return order
}
