package models

type Order struct {
	ID               string   `json:"id"`
	CustomerID       string   `json:"customer_id"`
	RestaurantID     string   `json:"restaurant_id"`
	Total            float64  `json:"total"`
	OriginalTotal    *float64 `json:"original_total,omitempty"` // pre-discount, nil falls back to Total
	CouponDiscount   float64  `json:"coupon_discount"`
	Date             string   `json:"date"` // DD.MM.YYYY or ISO
	IsCommissionPaid bool     `json:"is_commission_paid"`
	Status           string   `json:"status"` // e.g., "placed", "preparing", "delivered", "cancelled"
	PaymentMethod    string   `json:"payment_method"`
}

// Gross is the revenue the order counts for in commission accounting.
func (o Order) Gross() float64 {
	if o.OriginalTotal != nil {
		return *o.OriginalTotal
	}
	return o.Total
}

// OrderPatch carries the mutable fields of an order. Nil fields are left untouched.
type OrderPatch struct {
	Status           *string `json:"status,omitempty"`
	IsCommissionPaid *bool   `json:"is_commission_paid,omitempty"`
}

// OrderFilter narrows ListOrders. Zero values match everything.
type OrderFilter struct {
	RestaurantID string
	UnpaidOnly   bool
}

func (f OrderFilter) Match(o Order) bool {
	if f.RestaurantID != "" && o.RestaurantID != f.RestaurantID {
		return false
	}
	if f.UnpaidOnly && o.IsCommissionPaid {
		return false
	}
	return true
}

func Float64(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
