package filter

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Apply drops itineraries outside filters and returns the rest sorted by
// total price, cheapest first. seats scales the per-seat price for the
// price_max filter.
func Apply(itineraries []models.Itinerary, filters *models.SearchFilters, seats int) []models.Itinerary {
	filtered := applyFilters(itineraries, filters, seats)
	SortByPrice(filtered)
	return filtered
}

// SortByPrice orders by numeric total price. Ties keep their input order.
func SortByPrice(itineraries []models.Itinerary) {
	sort.SliceStable(itineraries, func(i, j int) bool {
		return itineraries[i].TotalPrice().Amount.LessThan(itineraries[j].TotalPrice().Amount)
	})
}

func applyFilters(itineraries []models.Itinerary, filters *models.SearchFilters, seats int) []models.Itinerary {
	if filters == nil {
		return itineraries
	}

	result := make([]models.Itinerary, 0, len(itineraries))

	for _, it := range itineraries {
		if matchesFilters(it, filters, seats) {
			result = append(result, it)
		}
	}

	return result
}

func matchesFilters(it models.Itinerary, filters *models.SearchFilters, seats int) bool {
	if filters.PriceMax != nil {
		party := it.TotalPrice().Amount.Mul(decimal.NewFromInt(int64(seats)))
		if party.GreaterThan(decimal.NewFromFloat(*filters.PriceMax)) {
			return false
		}
	}

	if filters.MaxDuration != nil {
		for _, leg := range it.Legs() {
			if int(leg.Duration().Minutes()) > *filters.MaxDuration {
				return false
			}
		}
	}

	depTime := it.Outbound.Departure.Hour()*60 + it.Outbound.Departure.Minute()
	if filters.DepartureTimeMin != nil {
		minTime, err := parseTimeOfDay(*filters.DepartureTimeMin)
		if err == nil && depTime < minTime {
			return false
		}
	}
	if filters.DepartureTimeMax != nil {
		maxTime, err := parseTimeOfDay(*filters.DepartureTimeMax)
		if err == nil && depTime > maxTime {
			return false
		}
	}

	return true
}

func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
