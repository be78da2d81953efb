// Package ranking orders the storefront's restaurant list, pushing back
// restaurants with unpaid commission.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chrisdamba/foodmarket/internal/models"
)

type SortMode string

const (
	SortRecommended SortMode = "recommended"
	SortRating      SortMode = "rating"
	SortName        SortMode = "name"
)

// DemoteAlwaysLevel and above is sorted last in every mode.
const DemoteAlwaysLevel = 2

func ParseSortMode(s string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", SortRecommended:
		return SortRecommended, nil
	case SortRating, SortName:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

type RankedRestaurant struct {
	models.Restaurant
	PenaltyLevel int  `json:"penalty_level"`
	Open         bool `json:"open"`
}

// demotion tier: 0 normal, 1 demoted in recommended mode, 2 always last
func tier(r RankedRestaurant, mode SortMode) int {
	switch {
	case r.PenaltyLevel >= DemoteAlwaysLevel:
		return 2
	case r.PenaltyLevel == 1 && mode == SortRecommended:
		return 1
	default:
		return 0
	}
}

// Sort returns a new slice ordered for the storefront. Open is filled in from
// nowHour using the overnight aware check.
func Sort(restaurants []RankedRestaurant, mode SortMode, nowHour int) []RankedRestaurant {
	out := make([]RankedRestaurant, len(restaurants))
	for i, r := range restaurants {
		r.Open = r.OpenAtOvernight(nowHour)
		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ta, tb := tier(a, mode), tier(b, mode); ta != tb {
			return ta < tb
		}
		if a.Open != b.Open {
			return a.Open
		}
		switch mode {
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return a.Rating > b.Rating
		}
	})
	return out
}
