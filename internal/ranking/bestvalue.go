package ranking

import (
	"math"
	"time"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Charter legs are non-stop, so only price and time in the air count.
const (
	PriceWeight    = 0.6
	DurationWeight = 0.4
)

// Scores returns a best-value score per itinerary, in input order.
// Lower score = better value. It does not reorder anything.
func Scores(itineraries []models.Itinerary) []float64 {
	scores := make([]float64, len(itineraries))
	if len(itineraries) == 0 {
		return scores
	}

	maxPrice := findMaxPrice(itineraries)
	maxDuration := findMaxDuration(itineraries)

	for i, it := range itineraries {
		scores[i] = CalculateBestValue(it, maxPrice, maxDuration)
	}
	return scores
}

func CalculateBestValue(it models.Itinerary, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (it.TotalPrice().Amount.InexactFloat64() / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (airTime(it).Minutes() / maxDuration) * 100
	}

	score := (priceScore * PriceWeight) + (durationScore * DurationWeight)
	return math.Round(score*100) / 100
}

func airTime(it models.Itinerary) time.Duration {
	var total time.Duration
	for _, leg := range it.Legs() {
		total += leg.Duration()
	}
	return total
}

func findMaxPrice(itineraries []models.Itinerary) float64 {
	maxPrice := 0.0
	for _, it := range itineraries {
		if p := it.TotalPrice().Amount.InexactFloat64(); p > maxPrice {
			maxPrice = p
		}
	}
	return maxPrice
}

func findMaxDuration(itineraries []models.Itinerary) float64 {
	maxDuration := 0.0
	for _, it := range itineraries {
		if d := airTime(it).Minutes(); d > maxDuration {
			maxDuration = d
		}
	}
	return maxDuration
}
