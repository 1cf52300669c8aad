package aggregator

import (
	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Combine pairs every outbound record with every inbound record, outbound
// major, and keeps the pairs that answer req. The second return value is the
// number of dropped pairs.
func Combine(req models.FlightRequest, outbound, inbound []models.FlightRecord) ([]models.Itinerary, int) {
	itineraries := make([]models.Itinerary, 0, len(outbound)*len(inbound))
	dropped := 0

	for _, out := range outbound {
		for i := range inbound {
			in := inbound[i]
			if !validPair(req, out, in) {
				dropped++
				continue
			}
			itineraries = append(itineraries, models.Itinerary{Outbound: out, Inbound: &in})
		}
	}

	return itineraries, dropped
}

func validPair(req models.FlightRequest, out, in models.FlightRecord) bool {
	if req.ReturnDate == nil {
		return false
	}

	if out.DepartureAirport != req.Origin || out.ArrivalAirport != req.Destination {
		return false
	}
	if !models.SameDate(out.Departure, req.DepartureDate) {
		return false
	}

	if in.DepartureAirport != out.ArrivalAirport || in.ArrivalAirport != out.DepartureAirport {
		return false
	}
	if !models.SameDate(in.Departure, *req.ReturnDate) {
		return false
	}

	if in.Departure.Before(out.Arrival) {
		return false
	}

	return out.Price.Currency == in.Price.Currency
}

// OneWay wraps each outbound record in its own itinerary.
func OneWay(outbound []models.FlightRecord) []models.Itinerary {
	itineraries := make([]models.Itinerary, 0, len(outbound))
	for _, out := range outbound {
		itineraries = append(itineraries, models.Itinerary{Outbound: out})
	}
	return itineraries
}
