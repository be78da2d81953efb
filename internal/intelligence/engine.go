// Package intelligence compares a menu item against comparable items of the
// other restaurants that are open right now and suggests cheaper options.
package intelligence

import (
	"math"
	"sort"

	"github.com/chrisdamba/foodmarket/internal/models"
)

const (
	// ExpensiveThreshold flags an item whose unit score exceeds the peer
	// average by more than 15%.
	ExpensiveThreshold = 1.15
	// MinKeywordHits is the number of target keywords a candidate name must
	// contain to count as a name match.
	MinKeywordHits = 2
	// MaxBestOptions caps the ranked alternatives returned.
	MaxBestOptions = 3
	// DefaultMaxCandidates bounds the number of menu items scanned per call.
	DefaultMaxCandidates = 5000
)

// Alternative is a comparable item offered by another restaurant.
type Alternative struct {
	Item           models.MenuItem `json:"item"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Score          float64         `json:"score"`
}

type Result struct {
	IsExpensive    bool          `json:"is_expensive"`
	AvgPrice       float64       `json:"avg_price"`
	CurrentPrice   float64       `json:"current_price"`
	SavingsPercent float64       `json:"savings_percent"`
	BestOptions    []Alternative `json:"best_options"`
}

type Engine struct {
	Threshold     float64
	MaxCandidates int
}

func NewEngine(cfg models.IntelligenceConfig) *Engine {
	e := &Engine{Threshold: cfg.ExpensiveThreshold, MaxCandidates: cfg.MaxCandidates}
	if e.Threshold <= 0 {
		e.Threshold = ExpensiveThreshold
	}
	if e.MaxCandidates <= 0 {
		e.MaxCandidates = DefaultMaxCandidates
	}
	return e
}

// Evaluate runs the engine with the default threshold and scan cap.
func Evaluate(target models.MenuItem, targetRestaurantID string, restaurants []models.Restaurant, nowHour int) (*Result, bool) {
	return NewEngine(models.IntelligenceConfig{}).Evaluate(target, targetRestaurantID, restaurants, nowHour)
}

// UnitScore is the price per declared unit, or the raw price without one.
func UnitScore(item models.MenuItem) float64 {
	if item.UnitAmount > 0 {
		return item.Price / item.UnitAmount
	}
	return item.Price
}

// Evaluate returns false when there is nothing to compare against or the
// target has no usable price.
func (e *Engine) Evaluate(target models.MenuItem, targetRestaurantID string, restaurants []models.Restaurant, nowHour int) (*Result, bool) {
	if !target.Valid() {
		return nil, false
	}
	currentScore := UnitScore(target)
	if currentScore <= 0 || math.IsNaN(currentScore) || math.IsInf(currentScore, 0) {
		return nil, false
	}

	keywords := Keywords(target.Name)
	targetCategory := Normalize(target.BaseCategory)

	var matches []Alternative
	scanned := 0
scan:
	for _, restaurant := range restaurants {
		if restaurant.ID == targetRestaurantID || !restaurant.OpenAt(nowHour) {
			continue
		}
		for _, item := range restaurant.Menu {
			if scanned >= e.MaxCandidates {
				break scan
			}
			scanned++
			if !item.Valid() || item.IsMenu != target.IsMenu {
				continue
			}
			if !matchesCategory(targetCategory, item) && !matchesName(keywords, item) {
				continue
			}
			matches = append(matches, Alternative{
				Item:           item,
				RestaurantID:   restaurant.ID,
				RestaurantName: restaurant.Name,
				Score:          UnitScore(item),
			})
		}
	}

	if len(matches) == 0 {
		return nil, false
	}

	total := 0.0
	for _, m := range matches {
		total += m.Score
	}
	avgScore := total / float64(len(matches))

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	best := matches
	if len(best) > MaxBestOptions {
		best = best[:MaxBestOptions]
	}

	return &Result{
		IsExpensive:    currentScore > avgScore*e.Threshold,
		AvgPrice:       roundHalfUp(avgScore * target.UnitAmountOr(1)),
		CurrentPrice:   target.Price,
		SavingsPercent: roundHalfUp((currentScore - avgScore) / currentScore * 100),
		BestOptions:    append([]Alternative(nil), best...),
	}, true
}

func matchesCategory(targetCategory string, item models.MenuItem) bool {
	if targetCategory == "" {
		return false
	}
	return Normalize(item.BaseCategory) == targetCategory
}

func matchesName(keywords []string, item models.MenuItem) bool {
	if len(keywords) < MinKeywordHits {
		return false
	}
	return keywordHits(Normalize(item.Name), keywords) >= MinKeywordHits
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
