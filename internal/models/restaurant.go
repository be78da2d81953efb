package models

type Restaurant struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OpenTime  int        `json:"open_time"`  // hour of day, 0-23
	CloseTime int        `json:"close_time"` // hour of day, 0-24
	Menu      []MenuItem `json:"menu"`
	Status    string     `json:"status"`
	Rating    float64    `json:"rating"`
	Cuisines  []string   `json:"cuisines"`
}

// OpenAt is the direct interval check [OpenTime, CloseTime). A window whose
// close hour is numerically below its open hour never matches.
func (r Restaurant) OpenAt(hour int) bool {
	return hour >= r.OpenTime && hour < r.CloseTime
}

// OpenAtOvernight is the storefront variant that also accepts windows running
// past midnight, e.g. 10-02.
func (r Restaurant) OpenAtOvernight(hour int) bool {
	if r.OpenTime == r.CloseTime {
		return false
	}
	if r.CloseTime < r.OpenTime {
		return hour >= r.OpenTime || hour < r.CloseTime
	}
	return r.OpenAt(hour)
}
