package models

type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurant_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	UnitType     UnitType `json:"unit_type,omitempty"`
	UnitAmount   float64  `json:"unit_amount,omitempty"` // 0 when absent
	IsMenu       bool     `json:"is_menu"`               // bundle vs single item
	BaseCategory string   `json:"base_category,omitempty"`
	Category     string   `json:"category"`
}

// UnitAmountOr returns the declared unit amount, or fallback when none is set.
func (m MenuItem) UnitAmountOr(fallback float64) float64 {
	if m.UnitAmount > 0 {
		return m.UnitAmount
	}
	return fallback
}

// Valid reports whether the item can take part in price comparisons.
func (m MenuItem) Valid() bool {
	return m.Name != "" && m.Price >= 0
}
